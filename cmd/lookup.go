package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/siren-cli/internal/legalform"
	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/notice"
	"github.com/sells-group/siren-cli/internal/siret"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup <siret>",
	Short: "Look up a company by SIRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer env.Close()

		rec, err := env.Service.GetCompanyData(cmd.Context(), args[0])
		if err != nil {
			return userError(err)
		}

		if lookupJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}
		printCompany(cmd.OutOrStdout(), rec)
		return nil
	},
}

// userError replaces registry errors with their user-facing message so the
// CLI prints what a form user would see.
func userError(err error) error {
	if sirene.KindOf(err) == "" {
		return err
	}
	return eris.New(sirene.UserMessage(err))
}

func printCompany(w io.Writer, rec *model.CompanyRecord) {
	code := ""
	if rec.UniteLegale != nil {
		code = rec.UniteLegale.CategorieJuridique
	}
	status := "actif"
	if !rec.Active {
		status = "inactif"
	}

	fmt.Fprintf(w, "Dénomination:    %s\n", rec.Denomination)
	fmt.Fprintf(w, "SIREN:           %s\n", siret.FormatSIREN(rec.SIREN))
	fmt.Fprintf(w, "SIRET:           %s\n", siret.FormatSIRET(rec.SIRET))
	fmt.Fprintf(w, "Type:            %s\n", rec.EntityType)
	fmt.Fprintf(w, "Forme juridique: %s (%s)\n", legalform.Label(code), code)
	fmt.Fprintf(w, "Adresse:         %s\n", notice.FormatStreet(rec.EtablissementSiege))
	fmt.Fprintf(w, "Code postal:     %s\n", postalCode(rec.EtablissementSiege))
	fmt.Fprintf(w, "Ville:           %s\n", rec.EtablissementSiege.City())
	fmt.Fprintf(w, "Statut:          %s\n", status)
}

func postalCode(e *model.EstablishmentRecord) string {
	if e == nil {
		return ""
	}
	return e.CodePostal
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the merged record as JSON")
	rootCmd.AddCommand(lookupCmd)
}
