package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"realdream/internal/config"
	"realdream/internal/core/domain"
	"realdream/internal/db"
)

var seedReceivers []string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo campaign and mint it",
	Long: `Seed creates the demo campaign of the first TRD drop as LEDGER_OPERATOR
and mints it to the given receivers. Without receivers the campaign is filled
with throwaway accounts.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringSliceVarP(&seedReceivers, "receiver", "r", nil, "Receiver address, repeatable (up to the demo capacity)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Ledger.Operator == domain.NullAccount {
		return errors.New("LEDGER_OPERATOR must be a non-zero 0x address")
	}
	receivers := make([]common.Address, 0, len(seedReceivers))
	for _, s := range seedReceivers {
		if !common.IsHexAddress(s) {
			return fmt.Errorf("invalid receiver %q", s)
		}
		receivers = append(receivers, common.HexToAddress(s))
	}

	logger := cfg.Log.New(os.Stderr)
	repo, closeRepo, err := openRepository(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc := newUseCase(cfg, repo, logger, nil)
	campaignID, ids, err := db.Seed(cmd.Context(), svc, cfg.Ledger.Operator, receivers)
	if err != nil {
		return err
	}
	fmt.Printf("campaign %d\n", campaignID)
	for _, id := range ids {
		owner, err := svc.OwnerOf(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("  token %s -> %s\n", id, owner.Hex())
	}
	return nil
}
