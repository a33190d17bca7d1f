package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"

	"github.com/pipelined/modular/module"
	"github.com/pipelined/modular/modules"
)

type listCommand struct {
	verbose bool
}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the list of available modules"
}

func (cmd *listCommand) Register(fs *flag.FlagSet) {
	fs.BoolVar(&cmd.verbose, "v", false, "dump full module descriptors")
}

func (cmd *listCommand) Run(_ context.Context, out io.Writer) error {
	descs := modules.Default().List()
	if cmd.verbose {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
		for _, desc := range descs {
			cfg.Fdump(out, desc)
		}
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCATEGORY\tINPUTS\tOUTPUTS\tPARAMS\tNAME")
	for _, desc := range descs {
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\t%s\t%s\n",
			desc.Type,
			desc.Category,
			ports(desc.Inputs()),
			ports(desc.Outputs()),
			params(desc.Params),
			desc.Name,
		)
	}
	return w.Flush()
}

func ports(ps []module.Port) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, fmt.Sprintf("%s:%v", p.Name, p.Type))
	}
	return strings.Join(names, ",")
}

func params(ps []module.Param) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return strings.Join(names, ",")
}
