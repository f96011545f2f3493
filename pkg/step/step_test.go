package step

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ormasoftchile/gait/pkg/feature"
)

func TestSkipfTravelsTheErrorChannel(t *testing.T) {
	err := Skipf("not implemented")
	var sig *SkipSignal
	if !errors.As(err, &sig) {
		t.Fatalf("Skipf result %T is not a *SkipSignal", err)
	}
	if sig.Message != "not implemented" {
		t.Errorf("message = %q", sig.Message)
	}
}

func TestSkipPanicsWithTheMarker(t *testing.T) {
	defer func() {
		rec := recover()
		sig, ok := rec.(*SkipSignal)
		if !ok {
			t.Fatalf("recovered %T, want *SkipSignal", rec)
		}
		if sig.Message != "later" {
			t.Errorf("message = %q", sig.Message)
		}
	}()
	Skip("later")
}

func TestFixtureSpecCompatible(t *testing.T) {
	untyped := FixtureSpec{Name: "any"}
	if !untyped.Compatible("x") || !untyped.Compatible(42) {
		t.Errorf("untyped spec must accept any value")
	}

	typed := FixtureSpec{Name: "count", Type: reflect.TypeOf(0)}
	if !typed.Compatible(7) {
		t.Errorf("int spec must accept an int")
	}
	if typed.Compatible("7") {
		t.Errorf("int spec must reject a string")
	}
	if typed.Compatible(nil) {
		t.Errorf("typed spec must reject a nil value")
	}
}

func TestContextFixtures(t *testing.T) {
	c := NewContext()
	c.Set("basket", []string{"apple"})
	c.Set("count", 5)

	if !c.Has("basket") || c.Has("label") {
		t.Errorf("Has misbehaves")
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "basket" || names[1] != "count" {
		t.Errorf("Names = %v, want sorted [basket count]", names)
	}

	n, err := FixtureAs[int](c, "count")
	if err != nil || n != 5 {
		t.Errorf("FixtureAs[int] = %d, %v", n, err)
	}
	if _, err := FixtureAs[string](c, "count"); err == nil {
		t.Errorf("type mismatch must error")
	}
	if _, err := FixtureAs[int](c, "absent"); err == nil {
		t.Errorf("missing fixture must error")
	}

	c.Delete("count")
	if c.Has("count") {
		t.Errorf("Delete left the fixture in place")
	}
}

func TestExecutionErrorMessages(t *testing.T) {
	base := ExecutionError{
		Index:        2,
		Keyword:      feature.Then,
		Text:         "the basket holds 5 apples",
		FeaturePath:  "features/apples.feature",
		ScenarioName: "adding apples",
	}

	notFound := base
	notFound.Kind = KindStepNotFound
	for _, want := range []string{"Then", "the basket holds 5 apples", "step 3", "adding apples", "features/apples.feature"} {
		if !strings.Contains(notFound.Error(), want) {
			t.Errorf("StepNotFound message %q missing %q", notFound.Error(), want)
		}
	}

	missing := base
	missing.Kind = KindMissingFixtures
	missing.Pattern = "the basket holds {n} apples"
	missing.Location = "steps/basket.go:12"
	missing.Required = []string{"basket"}
	missing.Missing = []string{"basket"}
	missing.Available = []string{"count"}
	for _, want := range []string{"basket.go:12", "the basket holds {n} apples", "missing [basket]", "available [count]"} {
		if !strings.Contains(missing.Error(), want) {
			t.Errorf("MissingFixtures message %q missing %q", missing.Error(), want)
		}
	}

	failed := base
	failed.Kind = KindHandlerFailed
	failed.Err = errors.New("boom")
	if !strings.Contains(failed.Error(), "boom") {
		t.Errorf("HandlerFailed message %q should carry the cause", failed.Error())
	}
	if !errors.Is(&failed, failed.Err) {
		t.Errorf("Unwrap must expose the cause")
	}
}
