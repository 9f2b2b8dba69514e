package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/raffle/internal/domain/cron"
	"github.com/questx-lab/raffle/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) newKeeper() (*cron.CronJobManager, error) {
	job, err := cron.NewUpkeepCronJob(xcontext.Configs(s.ctx).Keeper.Schedule,
		s.raffleRepo, s.raffleDomain, s.vrfDomain, s.eventHub)
	if err != nil {
		return nil, err
	}

	manager := cron.NewCronJobManager()
	manager.Register(job)
	return manager, nil
}

func (s *srv) startKeeper(*cli.Context) error {
	if err := s.loadChain(); err != nil {
		return err
	}

	manager, err := s.newKeeper()
	if err != nil {
		return err
	}

	go func() {
		termSignal := make(chan os.Signal, 1)
		signal.Notify(termSignal, syscall.SIGINT, syscall.SIGTERM)
		sig := <-termSignal
		xcontext.Logger(s.ctx).Infof("Got a signal of %s", sig.String())
		manager.Cancel(s.ctx)
	}()

	xcontext.Logger(s.ctx).Infof("Started keeper with schedule %s", xcontext.Configs(s.ctx).Keeper.Schedule)
	manager.Start(s.ctx)
	xcontext.Logger(s.ctx).Infof("Stopped keeper")

	return nil
}
