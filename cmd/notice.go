package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/notice"
)

var (
	noticeGivenName    string
	noticeSurname      string
	noticeTitle        string
	noticeIncludeTitle bool
)

var noticeCmd = &cobra.Command{
	Use:   "notice <siret>",
	Short: "Generate the legal notice (mentions légales) for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := representativeFromFlags()
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Service.GetCompanyData(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}

		var opts []notice.Option
		if noticeIncludeTitle {
			opts = append(opts, notice.WithTitle())
		}
		fmt.Fprintln(cmd.OutOrStdout(), env.Generator.Generate(rec, rep, opts...))
		return nil
	},
}

// representativeFromFlags returns nil when no name was given.
func representativeFromFlags() (*model.Representative, error) {
	if noticeGivenName == "" && noticeSurname == "" {
		return nil, nil
	}
	rep, err := notice.FormatRepresentative(noticeGivenName, noticeSurname)
	if err != nil {
		return nil, err
	}
	rep.Title = noticeTitle
	return rep, nil
}

func init() {
	noticeCmd.Flags().StringVar(&noticeGivenName, "prenom", "", "representative given name")
	noticeCmd.Flags().StringVar(&noticeSurname, "nom", "", "representative surname")
	noticeCmd.Flags().StringVar(&noticeTitle, "titre", "", "override the representative title")
	noticeCmd.Flags().BoolVar(&noticeIncludeTitle, "include-titre", false, "state the representative title in the notice")
	rootCmd.AddCommand(noticeCmd)
}
