package main

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/questx-lab/raffle/internal/domain/cron"
	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/migration"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) runDeploy(*cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	result, err := s.deploymentDomain.DeployRaffle(s.ctx)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func (s *srv) runUpdateFrontend(*cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	if err := s.deploymentDomain.UpdateFrontend(s.ctx); err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Front end written!")
	return nil
}

func (s *srv) runEnter(cctx *cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	address := cctx.String("address")
	from := cctx.String("from")
	if from == "" {
		from = xcontext.Configs(s.ctx).Deploy.Deployer
	}

	// The cli holds the database, it sends from any account like an operator.
	ctx := xcontext.WithOperator(s.ctx, "cli")

	fee, err := s.raffleDomain.GetEntranceFee(ctx, &model.GetRaffleRequest{Address: address})
	if err != nil {
		return err
	}

	value, ok := new(big.Int).SetString(fee.EntranceFee, 10)
	if !ok {
		return fmt.Errorf("invalid entrance fee %s", fee.EntranceFee)
	}

	resp, err := s.raffleDomain.EnterLottery(ctx, &model.EnterLotteryRequest{
		Address: address,
		From:    from,
		Value:   value.Add(value, big.NewInt(1)).String(),
	})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Entered!")
	return printJSON(resp.Receipt)
}

func (s *srv) runUpkeep(cctx *cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	job, err := cron.NewUpkeepCronJob(xcontext.Configs(s.ctx).Keeper.Schedule,
		s.raffleRepo, s.raffleDomain, s.vrfDomain, s.eventHub)
	if err != nil {
		return err
	}

	cfg := xcontext.Configs(s.ctx)
	result, err := job.Upkeep(s.ctx, cctx.String("address"), cfg.IsDevelopmentChain(cfg.Network))
	if err != nil {
		return err
	}

	if result.RequestID == 0 {
		xcontext.Logger(s.ctx).Infof("No upkeep needed")
	}

	return printJSON(result)
}

func (s *srv) runToken(cctx *cli.Context) error {
	name := cctx.String("name")
	token, err := s.tokenEngine.Generate(name, model.OperatorToken{Name: name})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func (s *srv) runMigrate(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	version := cctx.String("version")
	if version == "" {
		return nil
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(s.ctx)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}
