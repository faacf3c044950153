package utils

import "testing"

func TestValidEmail(t *testing.T) {
	valid := []string{
		"kim@example.com",
		"kim.lee@example.co",
		"a1@b2.org",
	}
	for _, e := range valid {
		if !ValidEmail(e) {
			t.Fatalf("%q should be valid", e)
		}
	}
	invalid := []string{
		"",
		"kim",
		"kim@",
		"@example.com",
		"kim@example",
		"kim @example.com",
	}
	for _, e := range invalid {
		if ValidEmail(e) {
			t.Fatalf("%q should be invalid", e)
		}
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{
		"pass12",    // letters+digits
		"pass!!",    // letters+specials
		"12!@34",    // digits+specials
		"pass12!@#", // all three
	}
	for _, p := range valid {
		if !ValidPassword(p) {
			t.Fatalf("%q should be valid", p)
		}
	}
	invalid := []string{
		"",
		"pas1!",             // too short
		"passwords1234567",  // too long
		"aaaaaa",            // one class only
		"123456",            // one class only
		"pass12 ",           // space not allowed
		"pass12(",           // paren not allowed
	}
	for _, p := range invalid {
		if ValidPassword(p) {
			t.Fatalf("%q should be invalid", p)
		}
	}
}

func TestValidName(t *testing.T) {
	if ValidName("K") {
		t.Fatalf("single-rune name should be invalid")
	}
	if !ValidName("Kim") {
		t.Fatalf("two-plus rune name should be valid")
	}
	if !ValidName("김수") {
		t.Fatalf("multibyte runes must count as characters, not bytes")
	}
}
