package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formintake/internal/app"
	"github.com/goliatone/go-formintake/pkg/schema"
)

const skipOption = "(skip)"

type submitFlags struct {
	service     string
	form        string
	file        string
	interactive bool
}

func submitCmd(flags *globalFlags) *cobra.Command {
	opts := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Dispatch one application through a configured service",
		Long: "Dispatch one application through a configured service without starting the\n" +
			"HTTP server. The body is read from --file (or stdin with \"-\"), or built\n" +
			"by prompting for each field of --form with --interactive.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.service == "" {
				return fmt.Errorf("submit: --service is required")
			}
			cfg, log, err := flags.load(cmd)
			if err != nil {
				return err
			}

			a, err := app.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			var body []byte
			switch {
			case opts.interactive:
				if opts.form == "" {
					return fmt.Errorf("submit: --form is required with --interactive")
				}
				form, err := a.Catalog.Schema(cmd.Context(), opts.form)
				if err != nil {
					return err
				}
				body, err = promptSubmission(form)
				if err != nil {
					return err
				}
			case opts.file == "-":
				body, err = io.ReadAll(cmd.InOrStdin())
			case opts.file != "":
				body, err = os.ReadFile(opts.file)
			default:
				return fmt.Errorf("submit: pass --file or --interactive")
			}
			if err != nil {
				return fmt.Errorf("submit: read body: %w", err)
			}

			resp := a.Dispatcher.Handle(cmd.Context(), opts.service, body)
			fmt.Fprintln(cmd.OutOrStdout(), string(resp.Body))
			if resp.StatusCode >= 400 {
				return fmt.Errorf("submit: service answered %d", resp.StatusCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.service, "service", "", "service id to dispatch to")
	cmd.Flags().StringVar(&opts.form, "form", "", "form id to prompt for")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "JSON request body, or - for stdin")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "prompt for each field")
	return cmd
}

type submittedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// promptSubmission asks for every field of form in name order. Fields with
// inline options become a select, everything else free text.
func promptSubmission(form schema.FormSchema) ([]byte, error) {
	fields := make([]submittedField, 0, len(form.Fields))
	for _, name := range form.FieldNames() {
		field, _ := form.Field(name)
		value, err := askField(field)
		if err != nil {
			return nil, fmt.Errorf("submit: %s: %w", name, err)
		}
		if value == "" {
			continue
		}
		fields = append(fields, submittedField{Name: name, Value: value})
	}

	return json.Marshal(map[string]any{
		"formId": form.FormID,
		"applicationData": map[string]any{
			"fields": fields,
		},
	})
}

func askField(field schema.FieldDescriptor) (string, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}

	var opts []survey.AskOpt
	if field.Mandatory {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	var out string
	if options := field.Options(); len(options) > 0 {
		if !field.Mandatory {
			options = append([]string{skipOption}, options...)
		}
		prompt := &survey.Select{Message: message, Options: options}
		if err := survey.AskOne(prompt, &out, opts...); err != nil {
			return "", err
		}
		if out == skipOption {
			return "", nil
		}
		return out, nil
	}

	prompt := &survey.Input{Message: message}
	if err := survey.AskOne(prompt, &out, opts...); err != nil {
		return "", err
	}
	return out, nil
}
