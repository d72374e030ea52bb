package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/document"
)

var catCmd = &cobra.Command{
	Use:   "cat <document>",
	Short: "Print a delta document as plain text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(logger(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(doc.PlainText())
		return nil
	},
}

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Rewrite a delta in canonical form",
	Long: `Parsing merges mergeable operations and orders inserts ahead of
the deletes they ride with; fmt prints the normalized result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := readDelta(logger(), args[0])
		if err != nil {
			return err
		}
		return emit(d)
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose <first> <second>",
	Short: "Combine two changes into one",
	Long: `Compose merges two sequential changes: the second applies to the
outcome of the first. The result transforms a document exactly as
applying both in order would.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger()
		a, err := readDelta(log, args[0])
		if err != nil {
			return err
		}
		b, err := readDelta(log, args[1])
		if err != nil {
			return err
		}
		combined, err := a.Compose(b)
		if err != nil {
			return err
		}
		return emit(combined)
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Compute the change between two documents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger()
		a, err := readDelta(log, args[0])
		if err != nil {
			return err
		}
		b, err := readDelta(log, args[1])
		if err != nil {
			return err
		}
		change, err := a.Diff(b)
		if err != nil {
			return err
		}
		return emit(change)
	},
}

var transformPriority bool

var transformCmd = &cobra.Command{
	Use:   "transform <applied> <incoming>",
	Short: "Rebase a concurrent change over an applied one",
	Long: `Transform rewrites the incoming change so it applies after the
applied one while keeping its intent. With --priority the applied
side wins position ties, so the incoming insert lands after a
concurrent insert at the same offset.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger()
		a, err := readDelta(log, args[0])
		if err != nil {
			return err
		}
		b, err := readDelta(log, args[1])
		if err != nil {
			return err
		}
		return emit(a.Transform(b, transformPriority))
	},
}

var invertCmd = &cobra.Command{
	Use:   "invert <change> <base>",
	Short: "Compute the change that undoes another",
	Long: `Invert produces the change that reverses the given one against the
base document it applied to.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger()
		change, err := readDelta(log, args[0])
		if err != nil {
			return err
		}
		base, err := readDelta(log, args[1])
		if err != nil {
			return err
		}
		return emit(change.Invert(base))
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint <document>",
	Short: "Validate a delta document and report its shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger()
		d, err := readDelta(log, args[0])
		if err != nil {
			return err
		}
		doc, err := document.FromDelta(d)
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(args[0]), err)
		}
		if !doc.Delta().Equal(d) {
			fmt.Println("note: not in canonical form (run fmt to normalize)")
		}
		st := doc.Stats()
		fmt.Printf("length:    %d\n", doc.Length())
		fmt.Printf("lines:     %d\n", st.Lines)
		fmt.Printf("words:     %d\n", st.Words)
		fmt.Printf("runes:     %d\n", st.Runes)
		fmt.Printf("graphemes: %d\n", st.Graphemes)
		return nil
	},
}

func init() {
	transformCmd.Flags().BoolVar(&transformPriority, "priority", false, "the applied change wins position ties")
}

// readDelta loads a delta from path, or from stdin for "-".
func readDelta(log *zap.Logger, path string) (*delta.Delta, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	d, err := delta.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	log.Debug("delta read",
		zap.String("path", displayName(path)),
		zap.Int("ops", len(d.Ops())),
		zap.Int("length", d.Length()))
	return d, nil
}

func readDocument(log *zap.Logger, path string) (*document.Document, error) {
	d, err := readDelta(log, path)
	if err != nil {
		return nil, err
	}
	doc, err := document.FromDelta(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return doc, nil
}

func displayName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}

// emit prints a delta as JSON, prettified on terminals unless
// --compact asks otherwise.
func emit(d *delta.Delta) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	out := string(raw)
	if !compact && term.IsTerminal(int(os.Stdout.Fd())) {
		out = strings.TrimSuffix(gjson.GetBytes(raw, "@pretty").Raw, "\n")
	}
	_, err = fmt.Println(out)
	return err
}
