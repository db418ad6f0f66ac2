package tests

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/sta4888/TZL/internal/cli"
	"github.com/sta4888/TZL/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const swordCatalog = `[{"id":1,"name":"Sword","price":50}]`

func wireCode(t *testing.T, err error) string {
	var we *cli.WireError
	require.True(t, errors.As(err, &we), "expected a wire error, got %v", err)
	return we.Code
}

func TestBuySellScenario(t *testing.T) {
	port, _ := setupTestServer(
		t, config.GameConfig{LoginCreditMin: 50, LoginCreditMax: 50}, swordCatalog,
	)
	c := connect(t, port)

	login, err := c.Login("player1")
	require.NoError(t, err)
	assert.Equal(t, 50, login.LoginBonus)
	assert.Equal(t, 50, login.Account.Credits)
	assert.Len(t, login.ItemsMaster, 1)

	// credits == price must be enough
	bought, err := c.Buy(1)
	require.NoError(t, err)
	assert.Equal(t, 0, bought.Account.Credits)
	assert.Equal(t, []int{1}, bought.Account.Items)
	assert.Equal(t, "Sword", bought.Bought.Name)

	sold, err := c.Sell(1)
	require.NoError(t, err)
	assert.Equal(t, 25, sold.Received)
	assert.Equal(t, 25, sold.Account.Credits)
	assert.Empty(t, sold.Account.Items)

	_, err = c.Buy(999)
	assert.Equal(t, "item_not_found", wireCode(t, err))

	_, err = c.Sell(1)
	assert.Equal(t, "not_owned", wireCode(t, err))

	who, err := c.WhoAmI()
	require.NoError(t, err)
	assert.Equal(t, 25, who.Account.Credits)
}

func TestWhoAmIBeforeLogin(t *testing.T) {
	port, _ := setupTestServer(t, config.GameConfig{}, swordCatalog)
	c := connect(t, port)

	_, err := c.WhoAmI()
	assert.Equal(t, "not_logged_in", wireCode(t, err))
}

func TestLoginWithoutNickname(t *testing.T) {
	port, _ := setupTestServer(t, config.GameConfig{}, swordCatalog)
	c := connect(t, port)

	_, err := c.Login("")
	assert.Equal(t, "no_nickname", wireCode(t, err))
}

func TestRepeatedLoginAccumulatesCredits(t *testing.T) {
	port, _ := setupTestServer(
		t, config.GameConfig{LoginCreditMin: 50, LoginCreditMax: 50}, swordCatalog,
	)

	first := connect(t, port)
	login, err := first.Login("returning")
	require.NoError(t, err)
	assert.Equal(t, 50, login.Account.Credits)

	second := connect(t, port)
	login, err = second.Login("returning")
	require.NoError(t, err)
	assert.Equal(t, 100, login.Account.Credits, "login must never reset an existing balance")
}

func TestConcurrentBuySameItem(t *testing.T) {
	port, _ := setupTestServer(
		t, config.GameConfig{LoginCreditMin: 50, LoginCreditMax: 50}, swordCatalog,
	)

	c1 := connect(t, port)
	c2 := connect(t, port)

	_, err := c1.Login("race")
	require.NoError(t, err)
	_, err = c2.Login("race")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, c := range []*cli.Client{c1, c2} {
		wg.Add(1)
		go func(i int, c *cli.Client) {
			defer wg.Done()
			_, errs[i] = c.Buy(1)
		}(i, c)
	}
	wg.Wait()

	var okCount, ownedCount int
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		if wireCode(t, err) == "already_owned" {
			ownedCount++
		}
	}
	assert.Equal(t, 1, okCount, "exactly one concurrent buy must succeed")
	assert.Equal(t, 1, ownedCount, "the loser must see already_owned")
}

func TestConcurrentBuyNoDoubleSpend(t *testing.T) {
	catalog := `[{"id":1,"name":"Shield","price":35},{"id":2,"name":"Helmet","price":25}]`
	port, repo := setupTestServer(t, config.GameConfig{}, catalog)

	c1 := connect(t, port)
	c2 := connect(t, port)

	_, err := c1.Login("spender")
	require.NoError(t, err)
	_, err = c2.Login("spender")
	require.NoError(t, err)

	// 50 credits cover either item but not both
	require.NoError(t, repo.AdjustCredits(context.Background(), "spender", 50))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = c1.Buy(1)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = c2.Buy(2)
	}()
	wg.Wait()

	var okCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			assert.Equal(t, "not_enough_credits", wireCode(t, err))
		}
	}
	assert.Equal(t, 1, okCount, "funds covering one item must allow exactly one buy")

	who, err := c1.WhoAmI()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, who.Account.Credits, 0)
}

func TestMalformedLineKillsOnlyThatConnection(t *testing.T) {
	port, _ := setupTestServer(t, config.GameConfig{}, swordCatalog)

	raw, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	require.NoError(t, err)
	defer raw.Close()
	require.NoError(t, raw.SetDeadline(time.Now().Add(5*time.Second)))

	_, err = raw.Write([]byte("{this is not json\n"))
	require.NoError(t, err)

	sc := bufio.NewScanner(raw)
	assert.False(t, sc.Scan(), "a malformed line must terminate the connection")

	// the listener and other sessions keep working
	c := connect(t, port)
	_, err = c.Login("survivor")
	assert.NoError(t, err)
}
