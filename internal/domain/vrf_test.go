package domain

import (
	"testing"

	"github.com/questx-lab/raffle/internal/model"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_vrfDomain_GetSubscription(t *testing.T) {
	s := newSuite(t)

	_, err := s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: 1})
	require.True(t, errorx.Is(err, errorx.ContractNotFound))

	result := s.deploy()

	resp, err := s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: result.SubscriptionID})
	require.NoError(t, err)
	require.Equal(t, uint64(1), resp.Subscription.SubID)
	require.Equal(t, "2000000000000000000", resp.Subscription.Balance)
	require.Equal(t, testDeployer.Hex(), resp.Subscription.Owner)
	require.Equal(t, []string{result.Raffle.Address}, resp.Subscription.Consumers)

	_, err = s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: 2})
	require.True(t, errorx.Is(err, errorx.InvalidSubscription))
}

func Test_vrfDomain_FulfillRandomWords(t *testing.T) {
	s := newSuite(t)
	s.deploy()

	_, err := s.vrfDomain.FulfillRandomWords(s.ctx, &model.FulfillRandomWordsRequest{RequestID: 1})
	require.True(t, errorx.Is(err, errorx.NonexistentRequest))

	s.enter(s.player(0))
	s.increaseTime(31)

	upkeep, err := s.raffleDomain.PerformUpkeep(s.ctx, &model.PerformUpkeepRequest{From: testKeeper.Hex()})
	require.NoError(t, err)

	_, err = s.vrfDomain.FulfillRandomWords(s.ctx, &model.FulfillRandomWordsRequest{
		RequestID: upkeep.RequestID,
		Words:     []string{"not-a-number"},
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = s.vrfDomain.FulfillRandomWords(s.ctx, &model.FulfillRandomWordsRequest{
		RequestID: upkeep.RequestID,
		Words:     []string{"1", "2"},
	})
	require.True(t, errorx.Is(err, errorx.InvalidRandomWords))

	resp, err := s.vrfDomain.FulfillRandomWords(s.ctx, &model.FulfillRandomWordsRequest{RequestID: upkeep.RequestID})
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "250500000000000000", resp.Payment)

	sub, err := s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: 1})
	require.NoError(t, err)
	require.Equal(t, "1749500000000000000", sub.Subscription.Balance)
}

func Test_vrfDomain_NonDevelopmentCoordinator(t *testing.T) {
	s := newSuiteWithContext(t, testutil.MockContextWithNetwork("rinkeby"))

	// Nothing simulates the real coordinator.
	_, err := s.vrfDomain.GetSubscription(s.ctx, &model.GetSubscriptionRequest{SubID: 1})
	require.True(t, errorx.Is(err, errorx.InvalidSubscription))
}
