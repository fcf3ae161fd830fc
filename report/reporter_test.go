package report

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	InitReporter(LogLevelSilent)
	os.Exit(m.Run())
}

func TestNewSpanOver(t *testing.T) {
	start := &TextSpan{StartLine: 1, StartCol: 2, EndLine: 1, EndCol: 5}
	end := &TextSpan{StartLine: 3, StartCol: 0, EndLine: 3, EndCol: 7}

	over := NewSpanOver(start, end)
	assert.Equal(t, &TextSpan{StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 7}, over)
}

func TestRaiseCarriesSpanAndMessage(t *testing.T) {
	span := &TextSpan{StartLine: 4}
	err := Raise(span, "the name `%s` is not in scope", "foo")

	assert.Equal(t, "the name `foo` is not in scope", err.Error())
	assert.Same(t, span, err.Span)
}

// The reporter's error count is global and never resets, so every assertion
// about it lives in this one test, sequenced explicitly.
func TestReporterLifecycle(t *testing.T) {
	assert.True(t, ShouldProceed())
	assert.False(t, AnyErrors())

	// Warnings never stop compilation.
	ReportCompileWarning("main.chim", "main.chim", nil, "unused binding `%s`", "x")
	ReportModuleWarning("app", "cache lookup failed: %s", "disk full")
	assert.True(t, ShouldProceed())

	ReportCompileError("main.chim", "main.chim", nil, "the name `%s` is not in scope", "y")
	assert.True(t, AnyErrors())
	assert.False(t, ShouldProceed())

	ReportModuleError("app", "package `%s` contains no compileable source files", "empty")
	ReportStdError("main.chim", errors.New("read failed"))
	assert.True(t, AnyErrors())

	// CatchErrors absorbs raised compile errors and standard errors alike.
	assert.NotPanics(t, func() {
		defer CatchErrors("main.chim", "main.chim")
		panic(Raise(&TextSpan{}, "type mismatch: Int v. Bool"))
	})

	assert.NotPanics(t, func() {
		defer CatchErrors("main.chim", "main.chim")
		panic(errors.New("unexpected end of file"))
	})

	assert.NotPanics(t, func() {
		defer CatchErrors("main.chim", "main.chim")
	})
}
