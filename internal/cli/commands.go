package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/renderer"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/validation"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List templates in the vault",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, warnings, err := a.svc.LoadVault()
			if err != nil {
				return err
			}
			printWarnings(cmd, warnings)
			if len(templates) == 0 {
				return nil
			}

			data := pterm.TableData{{"Template", "Version", "Status"}}
			for _, t := range templates {
				version, status := "-", "ok"
				if tpl, err := a.svc.Template(t.Path); err != nil {
					status = string(errors.GetAppError(err).Code)
				} else {
					version = tpl.Version
				}
				data = append(data, []string{t.Name, version, status})
			}
			return renderTable(cmd, data)
		},
	}
}

func (a *app) filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files <template>",
		Short: "List a template's output files",
		Long: `List the .md files in a template's outputs directory.

States:
  unfilled - topic files waiting for content
  filled   - topic files with content
  all      - every output file, including captured outputs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.FindTemplate(args[0])
			if err != nil {
				return err
			}
			state, _ := cmd.Flags().GetString("state")
			files, err := a.svc.OutputFiles(t.Path, state)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				pterm.Info.WithWriter(cmd.OutOrStdout()).Printfln("No %s files in %s", state, t.Name)
				return nil
			}

			data := pterm.TableData{{"File", "Type", "Topic", "Version", "Content"}}
			for _, f := range files {
				topic, version := "-", "-"
				if f.Metadata != nil {
					topic, version = f.Metadata.Topic, f.Metadata.PromptVersion
				} else if v, ok := f.Frontmatter[models.KeyVersion]; ok {
					version = v
				}
				content := "empty"
				if f.HasContent {
					content = "filled"
				}
				data = append(data, []string{f.FileName, string(f.Type), topic, version, content})
			}
			return renderTable(cmd, data)
		},
	}
	cmd.Flags().String("state", service.StateAll, "Filter by state (unfilled, filled, all)")
	return cmd
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <template> <topic>",
		Short: "Create a topic file and copy its prompt to the clipboard",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.FindTemplate(args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.CreateTopic(cmd.Context(), t.Path, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			printResult(cmd, res)
			if show, _ := cmd.Flags().GetBool("print"); show {
				pterm.Fprintln(cmd.OutOrStdout(), res.Prompt)
			}
			return nil
		},
	}
	cmd.Flags().Bool("print", false, "Also print the rendered prompt")
	return cmd
}

func (a *app) fillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fill <template> <file>",
		Short: "Append the clipboard to an unfilled topic file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFile(cmd, args, models.ActionFill, func(ctx context.Context, _ string, f models.OutputFile) (*service.Result, error) {
				return a.svc.Fill(ctx, f.Path)
			})
		},
	}
}

func (a *app) selectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <template> <file>",
		Short: "Copy the prompt an unfilled topic file was created with",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format != "text" && format != "json" {
				return errors.ValidationError("Format", "text or json")
			}
			var res *service.Result
			err := a.withFile(cmd, args, models.ActionSelect, func(ctx context.Context, dir string, f models.OutputFile) (*service.Result, error) {
				var err error
				res, err = a.svc.CopyPrompt(ctx, dir, f)
				return res, err
			})
			if err != nil {
				return err
			}

			out := res.Prompt
			if format == "json" {
				if out, err = renderer.RenderMessages(res.Prompt); err != nil {
					return err
				}
			}
			pterm.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().String("format", "text", "Output format for the printed prompt (text, json)")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <template> <file>",
		Short: "Clear a file's content and keep its frontmatter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFile(cmd, args, models.ActionReset, func(_ context.Context, _ string, f models.OutputFile) (*service.Result, error) {
				return a.svc.Reset(f.Path)
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <template> <file>",
		Aliases: []string{"rm"},
		Short:   "Delete an output file",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withFile(cmd, args, models.ActionDelete, func(_ context.Context, _ string, f models.OutputFile) (*service.Result, error) {
				return a.svc.Delete(f.Path)
			})
		},
	}
}

func (a *app) captureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <template>",
		Short: "Save the clipboard as a dated output of the current prompt version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.FindTemplate(args[0])
			if err != nil {
				return err
			}
			res, err := a.svc.Capture(cmd.Context(), t.Path)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
}

func (a *app) versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <template>",
		Short: "List a template's prompt revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.FindTemplate(args[0])
			if err != nil {
				return err
			}
			tpl, err := a.svc.Template(t.Path)
			if err != nil {
				return err
			}

			versions := make([]string, len(tpl.Prompts))
			created := make(map[string]string, len(tpl.Prompts))
			for i, rev := range tpl.Prompts {
				versions[i] = rev.Version
				created[rev.Version] = rev.CreatedAt
			}
			validation.SortVersions(versions)

			data := pterm.TableData{{"Version", "Created", ""}}
			for i := len(versions) - 1; i >= 0; i-- {
				marker := ""
				if versions[i] == tpl.Version {
					marker = "current"
				}
				data = append(data, []string{versions[i], created[versions[i]], marker})
			}
			return renderTable(cmd, data)
		},
	}
}

func (a *app) newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a template at version 1.0.0",
		Long: `Create a template directory holding prompt.toml at version 1.0.0.

The prompt text comes from --content, --file, or standard input. Use {{topic}}
where the topic of each output should go.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readContent(cmd)
			if err != nil {
				return err
			}
			res, err := a.svc.NewTemplate(args[0], content)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	addContentFlags(cmd)
	return cmd
}

func (a *app) bumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump <template>",
		Short: "Add a new prompt revision and make it current",
		Long: `Add a new revision above the highest existing version and make it current.

The prompt text comes from --content, --file, or standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.svc.FindTemplate(args[0])
			if err != nil {
				return err
			}
			content, err := readContent(cmd)
			if err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("level")
			res, err := a.svc.Bump(t.Path, content, level)
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	addContentFlags(cmd)
	cmd.Flags().String("level", validation.BumpPatch, "Version component to bump (patch, minor, major)")
	return cmd
}

// withFile resolves <template> <file> for action and runs fn on the file. Reset and delete
// need the exact template name.
func (a *app) withFile(cmd *cobra.Command, args []string, action models.Action,
	fn func(ctx context.Context, templateDir string, f models.OutputFile) (*service.Result, error)) error {
	find := a.svc.FindTemplate
	if action == models.ActionReset || action == models.ActionDelete {
		find = a.svc.ExactTemplate
	}
	t, err := find(args[0])
	if err != nil {
		return err
	}
	f, err := a.svc.FindFile(t.Path, action, args[1])
	if err != nil {
		return err
	}
	res, err := fn(cmd.Context(), t.Path, f)
	if err != nil {
		return err
	}
	printResult(cmd, res)
	return nil
}

func addContentFlags(cmd *cobra.Command) {
	cmd.Flags().String("content", "", "Prompt text")
	cmd.Flags().String("file", "", "Read the prompt text from a file")
}

func readContent(cmd *cobra.Command) (string, error) {
	if content, _ := cmd.Flags().GetString("content"); content != "" {
		return content, nil
	}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.FileNotFound(path, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Wrap(err, "read prompt from stdin")
	}
	return string(data), nil
}

// printResult reports a finished flow. Status lines go to stderr so stdout stays clean
// for printed prompts.
func printResult(cmd *cobra.Command, res *service.Result) {
	pterm.Success.WithWriter(cmd.ErrOrStderr()).Println(res.Message)
	if res.Path != "" {
		pterm.Fprintln(cmd.ErrOrStderr(), pterm.Gray("  "+res.Path))
	}
	printWarnings(cmd, res.Warnings)
}

func printWarnings(cmd *cobra.Command, warnings []errors.Warning) {
	for _, w := range warnings {
		pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println(w.Message)
	}
}

func renderTable(cmd *cobra.Command, data pterm.TableData) error {
	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
}
