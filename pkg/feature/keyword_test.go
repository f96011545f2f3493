package feature

import "testing"

func TestResolverConjunctions(t *testing.T) {
	var r Resolver
	seq := []struct {
		in   Keyword
		want Keyword
	}{
		{Given, Given},
		{And, Given},
		{But, Given},
		{When, When},
		{And, When},
		{Then, Then},
		{But, Then},
	}
	for i, s := range seq {
		got, err := r.Resolve(s.in)
		if err != nil {
			t.Fatalf("step %d: Resolve(%s): %v", i, s.in, err)
		}
		if got != s.want {
			t.Errorf("step %d: Resolve(%s) = %s, want %s", i, s.in, got, s.want)
		}
	}
}

func TestResolverLeadingConjunctionFails(t *testing.T) {
	var r Resolver
	if _, err := r.Resolve(And); err == nil {
		t.Errorf("leading And must fail to resolve")
	}
	r.Reset()
	if _, err := r.Resolve(But); err == nil {
		t.Errorf("leading But must fail to resolve")
	}
}

func TestResolverResetClearsState(t *testing.T) {
	var r Resolver
	if _, err := r.Resolve(Given); err != nil {
		t.Fatalf("Resolve(Given): %v", err)
	}
	r.Reset()
	if _, err := r.Resolve(And); err == nil {
		t.Errorf("And after Reset must fail to resolve")
	}
}

func TestParseKeyword(t *testing.T) {
	for _, word := range []string{"Given", "When", "Then", "And", "But"} {
		if _, ok := ParseKeyword(word); !ok {
			t.Errorf("ParseKeyword(%q) = false, want true", word)
		}
	}
	for _, word := range []string{"given", "GIVEN", "Whenever", ""} {
		if _, ok := ParseKeyword(word); ok {
			t.Errorf("ParseKeyword(%q) = true, want false", word)
		}
	}
}
