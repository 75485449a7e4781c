//go:build property

package vfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestIdentityProperties validates that every path spelling of one file
// resolves to the same identity, and that distinct files never collide
// within a run.
func TestIdentityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 30

	dir := t.TempDir()
	target := filepath.Join(dir, "main.doc")
	if err := os.WriteFile(target, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	want, err := ResolveIdentity(target)
	if err != nil {
		t.Fatal(err)
	}

	properties := gopter.NewProperties(parameters)

	properties.Property("dot-segment spellings share one identity", prop.ForAll(
		func(hops int) bool {
			// dir/sub/../sub/../.../main.doc, built without lexical
			// cleaning so resolution happens at the OS level.
			var b strings.Builder
			b.WriteString(dir)
			for i := 0; i < hops; i++ {
				b.WriteString(string(filepath.Separator) + "sub" + string(filepath.Separator) + "..")
			}
			b.WriteString(string(filepath.Separator) + "main.doc")

			got, err := ResolveIdentity(b.String())
			return err == nil && got == want
		},
		gen.IntRange(0, 8),
	))

	properties.Property("distinct files have distinct identities", prop.ForAll(
		func(name string) bool {
			path := filepath.Join(dir, "p-"+name+".doc")
			if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
				return false
			}
			got, err := ResolveIdentity(path)
			return err == nil && got != want
		},
		gen.RegexMatch("[a-z]{1,12}"),
	))

	properties.TestingRun(t)
}
