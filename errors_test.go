package dsv

import "testing"

func TestTextErrorFormatWithoutPosition(t *testing.T) {
	err := NewTextError("something broke")
	if got := err.Error(); got != "something broke" {
		t.Fatalf("Error() = %q, want %q", got, "something broke")
	}
	if _, _, ok := err.PhysicalPosition(); ok {
		t.Fatalf("PhysicalPosition() ok = true, want false before SetPhysicalPosition")
	}
}

func TestTextErrorFormatWithPosition(t *testing.T) {
	err := NewTextError("bad field")
	err.SetPhysicalPosition(2, 5)

	line, col, ok := err.PhysicalPosition()
	if !ok || line != 2 || col != 5 {
		t.Fatalf("PhysicalPosition() = (%d, %d, %v), want (2, 5, true)", line, col, ok)
	}

	want := "bad field; line 3 column 6"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestTextErrorFormatWithEmptyMessage(t *testing.T) {
	err := NewTextError("")
	err.SetPhysicalPosition(0, 0)

	want := "Text error at line 1 column 1"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestTextErrorFormatWithAbsentLineOnly(t *testing.T) {
	err := NewTextError("oops")
	err.SetPhysicalPosition(NoPos, 3)

	want := "oops; line n/a column 4"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestInvalidFormatErrorIsATextError(t *testing.T) {
	err := NewInvalidFormatError("stray quote")
	var target *TextError
	if err.TextError == nil {
		t.Fatal("InvalidFormatError should embed a non-nil TextError")
	}
	target = err.TextError
	if got := target.Error(); got != "stray quote" {
		t.Fatalf("embedded TextError.Error() = %q, want %q", got, "stray quote")
	}
}

func TestOutOfRangeErrorCarriesSign(t *testing.T) {
	err := NewOutOfRangeError("too big", SignPositive)
	if err.Sign != SignPositive {
		t.Fatalf("Sign = %d, want %d", err.Sign, SignPositive)
	}
}
