package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/opskit/internal/config"
	"github.com/danieljhkim/opskit/internal/fsops"
	"github.com/danieljhkim/opskit/internal/planstore"
)

func newConvertCmd(global *globalOptions) *cobra.Command {
	var inFile, outFile, format string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a file between YAML and JSON",
		Long: `Read a YAML or JSON file (format from its extension) and write it in the
other format. With --outfile the output format follows the outfile's
extension, falling back to --format; without it the result is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inFile == "" {
				return usageError{errors.New("no input file provided, use --infile")}
			}
			fallback, err := planstore.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("%w: %w", config.ErrConfig, err)
			}

			inPath, err := fsops.ExpandPath(inFile)
			if err != nil {
				return err
			}
			store := planstore.New(fsops.NewRealFS())
			doc, inFormat, err := store.ReadDocument(inPath)
			if err != nil {
				return err
			}

			log := newLogger(cmd, global)
			if outFile == "" {
				log.Debug("printing converted document", "from", inFormat, "to", fallback)
				data, err := planstore.EncodeDocument(doc, fallback)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			outPath, err := fsops.ExpandPath(outFile)
			if err != nil {
				return err
			}
			outFormat := planstore.FormatForPath(outPath, fallback)
			log.Debug("writing converted document", "from", inFormat, "to", outFormat, "path", outPath)
			if err := store.WriteDocument(doc, outPath, outFormat); err != nil {
				return err
			}
			PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Wrote %s as %s", outPath, outFormat))
			return nil
		},
	}

	cmd.Flags().StringVar(&inFile, "infile", "", "file to read from")
	cmd.Flags().StringVar(&outFile, "outfile", "", "file to save to")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format when it cannot be taken from --outfile: yaml or json")
	return cmd
}
