package app

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

func errNoDistributions() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("no browsable distributions available")
}

func errDistributionNotFound(name string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("distribution %q not found", name))
}

func errPackageNotFound(name string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("package %q not found", name))
}

func errUnknownStrategy(strategy string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown loader strategy %q", strategy))
}
