package settings

import "testing"

func TestMaskKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "short key fully hidden", in: "sk-1", want: "****"},
		{name: "long key keeps prefix and suffix", in: "sk-abcdefgh1234", want: "sk-********1234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := maskKey(tc.in); got != tc.want {
				t.Fatalf("maskKey(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsSupportedModel(t *testing.T) {
	t.Parallel()

	if !isSupportedModel("gpt-4.1-mini") || !isSupportedModel("gpt-4.1-nano") {
		t.Fatal("expected allow-listed models to be supported")
	}
	if isSupportedModel("gpt-3.5-turbo") {
		t.Fatal("did not expect unlisted model to be supported")
	}
}
