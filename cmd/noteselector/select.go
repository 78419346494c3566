package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vocdoni/note-selector/anonymity"
	"github.com/vocdoni/note-selector/api"
	"github.com/vocdoni/note-selector/log"
	"github.com/vocdoni/note-selector/selector"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run a note selection locally and print the ranked candidates",
	Long: `select reads a selection request in the JSON format of POST /selections
and prints the scored candidates, best first. The anonymity distribution must
be provided inline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input, _ := cmd.Flags().GetString("input")
		var in io.Reader = os.Stdin
		if input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		opts := &selectOptions{}
		if cmd.Flags().Changed("seed") {
			seed, _ := cmd.Flags().GetUint64("seed")
			opts.seed = &seed
		}
		if cmd.Flags().Changed("block") {
			block, _ := cmd.Flags().GetUint64("block")
			opts.block = &block
		}
		return runSelection(in, cmd.OutOrStdout(), opts)
	},
}

func init() {
	selectCmd.Flags().StringP("input", "i", "-", "request file, - reads stdin")
	selectCmd.Flags().Uint64("seed", 0, "seed of the random noise objective")
	selectCmd.Flags().Uint64("block", 0, "current block height, overrides the request")
}

// selectOptions override the values of the decoded request.
type selectOptions struct {
	seed  *uint64
	block *uint64
}

func runSelection(in io.Reader, out io.Writer, opts *selectOptions) error {
	req := &api.SelectionRequest{}
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if opts.seed != nil {
		req.Seed = opts.seed
	}
	if opts.block != nil {
		req.CurrentBlock = opts.block
	}

	var dist *anonymity.Distribution
	if req.AnonymityDistribution != nil {
		var err error
		if dist, err = anonymity.FromMap(req.AnonymityDistribution); err != nil {
			return fmt.Errorf("invalid anonymity distribution: %w", err)
		}
	} else {
		log.Warnw("no anonymity distribution, every amount is treated as unique")
	}
	var currentBlock uint64
	if req.CurrentBlock != nil {
		currentBlock = *req.CurrentBlock
	}

	results, err := selector.Select(req.SelectorRequest(dist, currentBlock))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
