package cmd

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pyvet/pyvet/internal/rules"
)

func rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "List the rules pyvet can report",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output rule metadata as JSON",
			},
			&cli.BoolFlag{
				Name:  "describe",
				Usage: "Include rule descriptions",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			metas := rules.AllRules()

			if cmd.Bool("json") {
				return json.MarshalWrite(
					os.Stdout,
					metas,
					jsontext.EscapeForHTML(true),
					jsontext.WithIndentPrefix(""),
					jsontext.WithIndent("  "),
				)
			}

			for _, m := range metas {
				fmt.Printf("%-5s %-7s %s\n", m.ID, m.Severity, m.Summary)
				if cmd.Bool("describe") {
					fmt.Printf("      %s\n", m.Description)
				}
			}
			return nil
		},
	}
}
