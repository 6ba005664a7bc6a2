package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"eventsite/internal/domains"
	"eventsite/internal/render"
	"eventsite/internal/service"
	"eventsite/internal/storage/providers"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template catalog commands",
}

var templateImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create a template from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateImport,
}

var templateExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write the current version of a template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateExport,
}

var (
	templateOwner   string
	templateOutput  string
	templatePublish bool
)

func init() {
	templateImportCmd.Flags().StringVar(&templateOwner, "owner", "", "Email of the user recorded as creator")
	templateImportCmd.Flags().BoolVar(&templatePublish, "publish", false, "Publish the template after import")
	_ = templateImportCmd.MarkFlagRequired("owner")
	templateExportCmd.Flags().StringVarP(&templateOutput, "output", "o", "", "Output file (default stdout)")

	templateCmd.AddCommand(templateImportCmd)
	templateCmd.AddCommand(templateExportCmd)
}

func decodeTemplate(r io.Reader) (domains.TemplateExport, error) {
	var t domains.TemplateExport
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return t, fmt.Errorf("parse template: %w", err)
	}
	return t, nil
}

func encodeTemplate(w io.Writer, t domains.TemplateExport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

func runTemplateImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	in, err := decodeTemplate(f)
	if err != nil {
		return err
	}

	_, db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	owner, err := providers.NewAuthProvider(db).GetUserByEmail(ctx, templateOwner)
	if err != nil {
		return fmt.Errorf("owner %s: %w", templateOwner, err)
	}

	svc := service.NewTemplateService(providers.NewTemplateProvider(db), render.New())
	details, err := svc.CreateTemplate(ctx, owner.ID, in.TemplateCreate)
	if err != nil {
		return err
	}
	if templatePublish {
		if _, err := svc.PublishTemplate(ctx, details.Template.ID); err != nil {
			return err
		}
	}

	fmt.Printf("Template %q imported (id %s, %d sections)\n", details.Template.Name, details.Template.ID, len(details.Sections))
	return nil
}

func runTemplateExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid template id: %w", err)
	}

	_, db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	details, err := service.NewTemplateService(providers.NewTemplateProvider(db), render.New()).GetTemplate(ctx, id)
	if err != nil {
		return err
	}
	out := domains.TemplateExport{TemplateCreate: service.ExportTemplate(details), Version: details.Version.Version}

	w := io.Writer(os.Stdout)
	if templateOutput != "" {
		f, err := os.Create(templateOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return encodeTemplate(w, out)
}
