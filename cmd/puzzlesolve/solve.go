package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/semiexp-go/puzzlecdcl/internal/dbchoco"
	"github.com/semiexp-go/puzzlecdcl/internal/evolmino"
	"github.com/semiexp-go/puzzlecdcl/internal/verify"
)

var (
	jsonOutput  bool
	balancerOpt bool
	verifyOpt   bool
	timeoutOpt  time.Duration
)

func newSolveCmd() *cobra.Command {
	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve a puzzle from its puzz.link URL",
	}

	addSolveFlags(solveCmd.PersistentFlags())

	solveCmd.AddCommand(newSolveDoublechocoCmd())
	solveCmd.AddCommand(newSolveEvolminoCmd())
	return solveCmd
}

func newSolveDoublechocoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dbchoco <url>",
		Short: "Solve a Doublechoco puzzle",
		Args:  cobra.ExactArgs(1),
		RunE:  solveDoublechocoFunc,
	}
	cmd.Flags().BoolVar(&balancerOpt, "balancer", false, "enable the Balancer theory constraint (slower, prunes more)")
	return cmd
}

func newSolveEvolminoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evolmino <url>",
		Short: "Solve an Evolmino puzzle",
		Args:  cobra.ExactArgs(1),
		RunE:  solveEvolminoFunc,
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeoutOpt <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeoutOpt)
}

func solveDoublechocoFunc(cmd *cobra.Command, args []string) error {
	problem, err := dbchoco.ParseURL(args[0])
	if err != nil {
		return errors.Wrap(err, "parse url")
	}

	var opts []dbchoco.Option
	if balancerOpt {
		opts = append(opts, dbchoco.WithBalancer(true))
	}
	s := dbchoco.NewSolver(problem, opts...)

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	answer, err := s.Solve(ctx)
	if err != nil {
		return errors.Wrap(err, "solve")
	}
	if answer == nil {
		fmt.Println("No answer")
		return nil
	}

	if verifyOpt {
		if err := verify.CheckDoublechoco(problem, answer); err != nil {
			log.WithError(err).Warn("answer failed independent verification")
		}
	}

	if jsonOutput {
		return printJSON(dbchocoAnswerJSON(answer))
	}
	fmt.Print(renderDoublechoco(answer))
	return nil
}

func solveEvolminoFunc(cmd *cobra.Command, args []string) error {
	problem, err := evolmino.ParseURL(args[0])
	if err != nil {
		return errors.Wrap(err, "parse url")
	}

	s := evolmino.NewSolver(problem)

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	answer, err := s.Solve(ctx)
	if err != nil {
		return errors.Wrap(err, "solve")
	}
	if answer == nil {
		fmt.Println("No answer")
		return nil
	}

	if verifyOpt {
		if err := verify.CheckEvolmino(problem, answer); err != nil {
			log.WithError(err).Warn("answer failed independent verification")
		}
	}

	if jsonOutput {
		return printJSON(evolminoAnswerJSON(answer))
	}
	fmt.Print(renderEvolmino(answer))
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
