package placeholder

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 4, 12, 9, 30, 45, 0, time.Local)
}

func TestAutoTokens(t *testing.T) {
	e := &Engine{Now: fixedClock}
	got, err := e.Substitute("on <date> at <time> (<year>-<month>-<day> <hour>:<minute>:<second>) <datetime>", nil, nil)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	want := "on 2025-04-12 at 09:30:45 (2025-04-12 09:30:45) 2025-04-12 09:30:45"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestAutoTokenSharedValue(t *testing.T) {
	// Both occurrences of the same token must resolve identically even
	// against the real clock.
	e := &Engine{}
	got, err := e.Substitute("<datetime>|<datetime>", nil, nil)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	parts := [2]string{got[:len(got)/2], got[len(got)/2+1:]}
	if parts[0] != parts[1] {
		t.Fatalf("occurrences differ: %q vs %q", parts[0], parts[1])
	}
}

func TestUnknownAngleTokenLeftAlone(t *testing.T) {
	e := &Engine{Now: fixedClock}
	got, err := e.Substitute("keep <shrug> and <html>", nil, nil)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != "keep <shrug> and <html>" {
		t.Fatalf("unknown tokens must not change: %q", got)
	}
}

func TestTags(t *testing.T) {
	tags := Tags("{{name}} meets {{Name}} and {{name}} again, plus {{city}}")
	want := []string{"name", "Name", "city"}
	if !reflect.DeepEqual(tags, want) {
		t.Fatalf("got %v want %v", tags, want)
	}
}

func TestUserTagsResolved(t *testing.T) {
	e := &Engine{Now: fixedClock}
	var asked []string
	got, err := e.Substitute("Hi {{name}}, {{name}} from {{city}}", nil, func(tags []string) (map[string]string, error) {
		asked = tags
		return map[string]string{"name": "Ada", "city": "London"}, nil
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != "Hi Ada, Ada from London" {
		t.Fatalf("got %q", got)
	}
	if !reflect.DeepEqual(asked, []string{"name", "city"}) {
		t.Fatalf("resolver should see distinct tags once: %v", asked)
	}
}

func TestUnresolvedTagStaysLiteral(t *testing.T) {
	e := &Engine{Now: fixedClock}
	got, err := e.Substitute("Hi {{name}}", nil, func(tags []string) (map[string]string, error) {
		return map[string]string{}, nil
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != "Hi {{name}}" {
		t.Fatalf("unresolved tag must stay literal, got %q", got)
	}
}

func TestLeaveRawSkipsPrompt(t *testing.T) {
	e := &Engine{Now: fixedClock}
	var asked []string
	got, err := e.Substitute("{{greeting}} {{name}}", map[string]bool{"greeting": true}, func(tags []string) (map[string]string, error) {
		asked = tags
		return map[string]string{"name": "Ada", "greeting": "never used"}, nil
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != "{{greeting}} Ada" {
		t.Fatalf("got %q", got)
	}
	if !reflect.DeepEqual(asked, []string{"name"}) {
		t.Fatalf("leave-raw tag must not be asked: %v", asked)
	}
}

func TestAllTagsLeaveRawSkipsResolver(t *testing.T) {
	e := &Engine{Now: fixedClock}
	called := false
	got, err := e.Substitute("{{a}} {{b}}", map[string]bool{"a": true, "b": true}, func(tags []string) (map[string]string, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if called {
		t.Fatalf("resolver must not run when every tag is leave-raw")
	}
	if got != "{{a}} {{b}}" {
		t.Fatalf("got %q", got)
	}
}

func TestResolverError(t *testing.T) {
	e := &Engine{Now: fixedClock}
	boom := errors.New("cancelled")
	if _, err := e.Substitute("{{name}}", nil, func(tags []string) (map[string]string, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("expected resolver error, got %v", err)
	}
}

func TestAutoBeforeUser(t *testing.T) {
	// A user value containing an auto-looking token is not re-expanded.
	e := &Engine{Now: fixedClock}
	got, err := e.Substitute("{{sig}}", nil, func(tags []string) (map[string]string, error) {
		return map[string]string{"sig": "sent <date>"}, nil
	})
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if got != "sent <date>" {
		t.Fatalf("user values must be inserted verbatim, got %q", got)
	}
}
