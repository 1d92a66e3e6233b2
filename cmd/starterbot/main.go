package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larkspurlane/starterbot/internal/config"
	"github.com/larkspurlane/starterbot/internal/gateway"
	"github.com/larkspurlane/starterbot/internal/lexicon"
)

var rootCmd = &cobra.Command{
	Use:   "starterbot",
	Short: "starterbot - daily Wordle starter bot",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (channel + daily scheduler)",
	RunE:  runServe,
}

var (
	topN      int
	topBottom bool
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the highest-scored lexicon words",
	RunE:  runTop,
}

var scoreCmd = &cobra.Command{
	Use:   "score <word>...",
	Short: "Print difficulty scores for specific words",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScore,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Write a default config file",
	RunE:  runOnboard,
}

func init() {
	topCmd.Flags().IntVarP(&topN, "n", "n", 20, "number of words to print")
	topCmd.Flags().BoolVar(&topBottom, "bottom", false, "print the lowest-scored words instead")
	rootCmd.AddCommand(serveCmd, topCmd, scoreCmd, onboardCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	g, err := gateway.New(cfg)
	if err != nil {
		return err
	}
	return g.Run(context.Background())
}

func loadLexicon() (lexicon.Lexicon, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	weights := lexicon.DefaultWeights()
	if cfg.WeightsPath != "" {
		weights, err = lexicon.LoadWeights(cfg.WeightsPath)
		if err != nil {
			return nil, err
		}
	}
	return lexicon.Build(cfg.LexiconPath, weights)
}

func runTop(cmd *cobra.Command, args []string) error {
	lex, err := loadLexicon()
	if err != nil {
		return err
	}
	for i, row := range lex.Top(topN, !topBottom) {
		fmt.Fprintf(cmd.OutOrStdout(), "%3d. %8.3f  %s\n", i+1, row.Score, row.Word)
	}
	return nil
}

func runScore(cmd *cobra.Command, args []string) error {
	lex, err := loadLexicon()
	if err != nil {
		return err
	}
	for _, w := range args {
		w = strings.ToLower(strings.TrimSpace(w))
		score, ok := lex[w]
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%8s  %s\n", "-", w)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%8.3f  %s\n", score, w)
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		return nil
	}
	if err := config.SaveConfig(config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	fmt.Fprintln(cmd.OutOrStdout(), "Set telegram.token and telegram.chatId, then run 'starterbot serve'.")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
