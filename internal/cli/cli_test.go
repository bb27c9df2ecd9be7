package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"serve", "distributions", "search", "show"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCommand()
	for _, name := range []string{"listen", "static-dir"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := newSearchCommand()
	flags := []string{
		"distribution", "search", "license", "classifier",
		"ordering", "page", "page-size", "strategy",
	}
	for _, name := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestShowCommandRequiresPackageArg(t *testing.T) {
	cmd := newShowCommand()
	assert.Error(t, cmd.Args(cmd, nil))
	assert.NoError(t, cmd.Args(cmd, []string{"requests"}))
}

// ---------- Exit code mapping ----------

func TestExitCodeForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", errbuilder.New().WithCode(errbuilder.CodeInvalidArgument).WithMsg("bad flag"), 2},
		{"not found", errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("missing"), 4},
		{"internal", errbuilder.New().WithCode(errbuilder.CodeInternal).WithMsg("upstream"), 5},
		{"plain error", assert.AnError, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCodeForError(tc.err))
		})
	}
}

// ---------- Search parameter mapping ----------

func TestSearchRequestParamsFilters(t *testing.T) {
	params := searchRequestParams(searchOptions{
		Search:     "req",
		License:    "MIT",
		Classifier: "Internet",
		Ordering:   "-version",
		Page:       2,
		PageSize:   50,
	})
	assert.Len(t, params.Filters, 3)
	if assert.NotNil(t, params.Sort) {
		assert.Equal(t, "version", params.Sort.Field)
	}
	assert.Equal(t, 50, params.Page.Offset())
}
