// Command drawctl generates and inspects draws offline, on JSON files.
//
// Usage:
//
//	drawctl generate --type FEED_IN_CHAMPIONSHIP --entries entries.json --automated -o draw.json
//	drawctl hierarchy --draw draw.json --structure <structureId> --depth 2
//	drawctl playoffs --draw draw.json --structure <structureId> --rounds 2,3 -o draw.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Dosada05/tournament-draws/brackets"
	"github.com/Dosada05/tournament-draws/models"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "drawctl",
		Short:        "Tournament draw generation CLI",
		SilenceUsage: true,
	}
	root.AddCommand(generateCmd())
	root.AddCommand(hierarchyCmd())
	root.AddCommand(playoffsCmd())
	return root
}

// --------------------------------------------------------------------------
// generate command
// --------------------------------------------------------------------------

func generateCmd() *cobra.Command {
	var (
		drawType    string
		drawSize    int
		groupSize   int
		entriesFile string
		idPrefix    string
		automated   bool
		out         string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draw definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []models.Entry
			if entriesFile != "" {
				if err := readJSONFile(entriesFile, &entries); err != nil {
					return err
				}
			}
			result, err := brackets.GenerateDrawDefinition(cmd.Context(), brackets.GenerateDrawDefinitionParams{
				DrawType:  models.DrawType(drawType),
				DrawSize:  drawSize,
				GroupSize: groupSize,
				Entries:   entries,
				Automated: automated,
				IDPrefix:  idPrefix,
				Logger:    logger,
			})
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			for _, c := range result.Conflicts {
				logger.Warn("avoidance conflict", "structure_id", c.StructureID, "participants", c.ParticipantIDs)
			}
			return writeJSONOutput(cmd.OutOrStdout(), out, result.DrawDefinition)
		},
	}
	cmd.Flags().StringVar(&drawType, "type", string(models.DrawTypeSingleElimination), "Draw type")
	cmd.Flags().IntVar(&drawSize, "size", 0, "Draw size (default: entries rounded up)")
	cmd.Flags().IntVar(&groupSize, "group-size", 0, "Round robin group size")
	cmd.Flags().StringVar(&entriesFile, "entries", "", "JSON file with the entries array")
	cmd.Flags().StringVar(&idPrefix, "id-prefix", "", "Deterministic id prefix instead of random ids")
	cmd.Flags().BoolVar(&automated, "automated", false, "Position entries after generation")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

// --------------------------------------------------------------------------
// hierarchy command
// --------------------------------------------------------------------------

func hierarchyCmd() *cobra.Command {
	var (
		drawFile    string
		structureID string
		depth       int
	)
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the elimination tree of a structure",
		RunE: func(cmd *cobra.Command, args []string) error {
			dd, err := readDraw(drawFile)
			if err != nil {
				return err
			}
			if structureID == "" && len(dd.Structures) > 0 {
				structureID = dd.Structures[0].StructureID
			}
			structure := brackets.FindStructure(dd, structureID)
			if structure == nil {
				return fmt.Errorf("%w: %s", brackets.ErrStructureNotFound, structureID)
			}
			result, err := brackets.BuildDrawHierarchy(structure.MatchUps, dd.MatchUpType)
			if err != nil {
				return err
			}
			if depth > 0 && result.Hierarchy != nil {
				brackets.CollapseHierarchy(result.Hierarchy, depth)
			}
			return writeJSONOutput(cmd.OutOrStdout(), "", result.Hierarchy)
		},
	}
	cmd.Flags().StringVar(&drawFile, "draw", "", "Draw definition JSON file")
	cmd.Flags().StringVar(&structureID, "structure", "", "Structure id (default: first structure)")
	cmd.Flags().IntVar(&depth, "depth", 0, "Collapse nodes at this depth")
	cmd.MarkFlagRequired("draw")
	return cmd
}

// --------------------------------------------------------------------------
// playoffs command
// --------------------------------------------------------------------------

func playoffsCmd() *cobra.Command {
	var (
		drawFile    string
		structureID string
		rounds      []int
		idPrefix    string
		out         string
	)
	cmd := &cobra.Command{
		Use:   "playoffs",
		Short: "Attach playoff structures fed by losers of the given rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			dd, err := readDraw(drawFile)
			if err != nil {
				return err
			}
			result, err := brackets.GenerateAndPopulatePlayoffStructures(cmd.Context(), dd, brackets.PlayoffStructuresParams{
				SourceStructureID: structureID,
				RoundNumbers:      rounds,
				IDPrefix:          idPrefix,
				Logger:            logger,
			})
			if err != nil {
				return fmt.Errorf("playoffs: %w", err)
			}
			for _, s := range result.Structures {
				logger.Info("playoff structure added", "structure_id", s.StructureID, "name", s.StructureName)
			}
			return writeJSONOutput(cmd.OutOrStdout(), out, dd)
		},
	}
	cmd.Flags().StringVar(&drawFile, "draw", "", "Draw definition JSON file")
	cmd.Flags().StringVar(&structureID, "structure", "", "Source structure id")
	cmd.Flags().IntSliceVar(&rounds, "rounds", nil, "Source rounds whose losers play off")
	cmd.Flags().StringVar(&idPrefix, "id-prefix", "", "Deterministic id prefix for new structures")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.MarkFlagRequired("draw")
	cmd.MarkFlagRequired("structure")
	return cmd
}

func readDraw(path string) (*models.DrawDefinition, error) {
	dd := &models.DrawDefinition{}
	if err := readJSONFile(path, dd); err != nil {
		return nil, err
	}
	return dd, nil
}

func readJSONFile(path string, dst interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSONOutput(stdout io.Writer, path string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if path == "" {
		_, err = stdout.Write(raw)
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
