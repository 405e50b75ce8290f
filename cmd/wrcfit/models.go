package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/YuminosukeSato/wrcfit/retention"
)

type modelsCmd struct{}

func (modelsCmd) Run(e *env) error {
	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tABBREV\tDESCRIPTION\tPARAMETERS")
	for _, v := range retention.Variants() {
		m, err := retention.ModelOf(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name(), m.Abbrev, m.DisplayName, strings.Join(m.ParamNames[:], ", "))
	}
	return tw.Flush()
}
