package regfile

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zalando/storefront/logging/loggingtest"
	"github.com/zalando/storefront/pattern"
	"github.com/zalando/storefront/routing"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		title    string
		doc      string
		expected []*routing.Registration
		fail     error
	}{{
		title: "empty",
		doc:   "",
	}, {
		title: "inferred kinds",
		doc: `
registrations:
  - pattern: /
    content: "1"
  - pattern: /shop/*
    content: "2"
`,
		expected: []*routing.Registration{
			{Pattern: "/", Kind: pattern.Literal, ContentId: "1"},
			{Pattern: "/shop/*", Kind: pattern.Wildcard, ContentId: "2"},
		},
	}, {
		title: "explicit kind and id",
		doc: `
registrations:
  - id: sale
    pattern: /summer-sale
    kind: Landing
    content: "7"
`,
		expected: []*routing.Registration{
			{Id: "sale", Pattern: "/summer-sale", Kind: pattern.Landing, ContentId: "7"},
		},
	}, {
		title: "empty pattern is a valid literal",
		doc: `
registrations:
  - pattern: ""
    content: "0"
`,
		expected: []*routing.Registration{
			{Pattern: "", Kind: pattern.Literal, ContentId: "0"},
		},
	}, {
		title: "missing pattern",
		doc: `
registrations:
  - content: "1"
`,
		fail: ErrMissingPattern,
	}, {
		title: "missing content",
		doc: `
registrations:
  - pattern: /
`,
		fail: ErrMissingContent,
	}, {
		title: "invalid kind",
		doc: `
registrations:
  - pattern: /
    kind: regexp
    content: "1"
`,
		fail: pattern.ErrInvalidKind,
	}} {
		t.Run(test.title, func(t *testing.T) {
			r, err := Parse([]byte(test.doc))
			if test.fail != nil {
				if !errors.Is(err, test.fail) {
					t.Fatalf("expected error %v, got: %v", test.fail, err)
				}

				var derr *DefinitionError
				if !errors.As(err, &derr) || derr.Index != 0 {
					t.Fatalf("expected definition error at index 0, got: %v", err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if len(r) == 0 && len(test.expected) == 0 {
				return
			}

			if d := cmp.Diff(test.expected, r); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestParseUnknownField(t *testing.T) {
	if _, err := Parse([]byte("registrations:\n  - pattern: /\n    contentId: \"1\"\n")); err == nil {
		t.Error("failed to fail")
	}
}

func TestDefinitionErrorIndex(t *testing.T) {
	_, err := Parse([]byte(`
registrations:
  - pattern: /
    content: "1"
  - id: broken
    pattern: /foo
`))

	var derr *DefinitionError
	if !errors.As(err, &derr) {
		t.Fatalf("expected definition error, got: %v", err)
	}

	if derr.Index != 1 || derr.Id != "broken" {
		t.Errorf("unexpected error details: %v", derr)
	}
}

func TestOpenFails(t *testing.T) {
	_, err := Open("nonexistent.yaml")
	if err == nil {
		t.Error("failed to fail")
	}
}

func TestOpenSucceeds(t *testing.T) {
	f, err := Open("fixtures/test.yaml")
	if err != nil {
		t.Fatal(err)
	}

	if f.String() != "file:fixtures/test.yaml" {
		t.Errorf("unexpected source name: %s", f)
	}

	l := loggingtest.New()
	defer l.Close()

	rt := routing.New(routing.Options{
		DataClients: []routing.DataClient{f},
		Log:         l,
		PollTimeout: 180 * time.Millisecond,
	})
	defer rt.Close()

	if err := l.WaitFor("routing updated", 120*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	check := func(contentID, path string) {
		t.Helper()
		r, ok := rt.Resolve(path)
		if !ok || r.ContentId != contentID {
			t.Errorf("failed to resolve %s to %s, got: %v", path, contentID, r)
		}
	}

	check("1", "/")
	check("2", "/shop/jackets")
	check("3", "/shop/sale/jackets")
	check("7", "/summer-sale")

	if _, ok := rt.Resolve("/about"); ok {
		t.Error("unexpected match for /about")
	}

	if d, ok := rt.Default(); !ok || d.ContentId != "99" {
		t.Errorf("failed to load the default registration: %v", d)
	}
}

func TestInline(t *testing.T) {
	c, err := Inline(`{registrations: [{pattern: "/shop/*", content: "2"}]}`)
	if err != nil {
		t.Fatal(err)
	}

	r, err := c.LoadAll()
	if err != nil {
		t.Fatal(err)
	}

	expected := []*routing.Registration{{Pattern: "/shop/*", Kind: pattern.Wildcard, ContentId: "2"}}
	if d := cmp.Diff(expected, r); d != "" {
		t.Error(d)
	}

	if c.String() != "inline" {
		t.Errorf("unexpected source name: %s", c)
	}

	if _, err := Inline("registrations: [{pattern: /}]"); err == nil {
		t.Error("failed to fail")
	}
}
