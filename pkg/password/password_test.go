package password

import "testing"

func TestDefault(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Oliver Tschabrun", "OliTsc"},
		{"Cinzia Arena", "CinAre"},
		{"  Max   von Mustermann ", "MaxMus"},
		{"Jo", "JoX"},
		{"", "PW1234"},
		{"Ä Öz", "ÄÖz"},
	}
	for _, tc := range cases {
		if got := Default(tc.name); got != tc.want {
			t.Errorf("Default(%q) = %q, 期望 %q", tc.name, got, tc.want)
		}
	}
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(4)

	hash, err := h.Hash("OliTsc")
	if err != nil {
		t.Fatalf("Hash 应成功: %v", err)
	}
	if hash == "OliTsc" {
		t.Fatal("哈希不应等于明文")
	}
	if err := h.Verify(hash, "OliTsc"); err != nil {
		t.Errorf("正确口令应校验通过: %v", err)
	}
	if err := h.Verify(hash, "wrong"); err != ErrMismatch {
		t.Errorf("错误口令应返回 ErrMismatch，实际=%v", err)
	}
}
