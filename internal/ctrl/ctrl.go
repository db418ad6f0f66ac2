package ctrl

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/sta4888/TZL/internal/config"
	"github.com/sta4888/TZL/internal/dto"
	"github.com/sta4888/TZL/internal/model"
	"github.com/sta4888/TZL/internal/repo"
	"go.uber.org/zap"
)

type AppRepo interface {
	GetAccount(ctx context.Context, nickname string) (*model.Account, error)
	CreateAccountIfMissing(ctx context.Context, nickname string, credits int) error
	AdjustCredits(ctx context.Context, nickname string, delta int) error
	Buy(ctx context.Context, nickname string, item model.Item) (*model.Account, error)
	Sell(ctx context.Context, nickname string, item model.Item, salePrice int) (*model.Account, error)
}

type ItemCatalog interface {
	ListAll() []model.Item
	Get(itemID int) (*model.Item, error)
}

type AppCtrl interface {
	Login(ctx context.Context, nickname string) (*dto.LoginResult, error)
	WhoAmI(ctx context.Context, nickname string) (*model.Account, error)
	Buy(ctx context.Context, nickname string, itemID int) (*dto.BuyResult, error)
	Sell(ctx context.Context, nickname string, itemID int) (*dto.SellResult, error)
}

type Controller struct {
	repo  AppRepo
	items ItemCatalog
	game  config.GameConfig
	mu    sync.Mutex
	rand  *rand.Rand
}

func New(repo AppRepo, items ItemCatalog, game config.GameConfig) *Controller {
	return &Controller{
		repo:  repo,
		items: items,
		game:  game,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// loginBonus draws a uniform bonus in [min, max]. A max below min
// disables the bonus instead of erroring.
func (c *Controller) loginBonus() int {
	min, max := c.game.LoginCreditMin, c.game.LoginCreditMax
	if max < min {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return min + c.rand.Intn(max-min+1)
}

func (c *Controller) Login(ctx context.Context, nickname string) (*dto.LoginResult, error) {
	const op = "shop.Login.ctrl"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	ctx = opentracing.ContextWithSpan(ctx, span)
	defer span.Finish()

	if nickname == "" {
		return nil, ErrNoNickname
	}

	if err := c.repo.CreateAccountIfMissing(ctx, nickname, config.DefaultBalance); err != nil {
		return nil, err
	}

	bonus := c.loginBonus()
	if bonus != 0 {
		if err := c.repo.AdjustCredits(ctx, nickname, bonus); err != nil {
			return nil, err
		}
	}

	acc, err := c.repo.GetAccount(ctx, nickname)
	if err != nil && errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	zap.L().Info(
		"user logged in",
		zap.String("nickname", nickname), zap.Int("bonus", bonus),
	)

	return &dto.LoginResult{
		Account:     acc,
		ItemsMaster: c.items.ListAll(),
		LoginBonus:  bonus,
	}, nil
}

func (c *Controller) WhoAmI(ctx context.Context, nickname string) (*model.Account, error) {
	const op = "shop.WhoAmI.ctrl"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	ctx = opentracing.ContextWithSpan(ctx, span)
	defer span.Finish()

	if nickname == "" {
		return nil, ErrNotLoggedIn
	}

	acc, err := c.repo.GetAccount(ctx, nickname)
	if err != nil && errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return acc, nil
}

func (c *Controller) Buy(ctx context.Context, nickname string, itemID int) (*dto.BuyResult, error) {
	const op = "shop.Buy.ctrl"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	ctx = opentracing.ContextWithSpan(ctx, span)
	defer span.Finish()

	if nickname == "" {
		return nil, ErrNotLoggedIn
	}

	item, err := c.items.Get(itemID)
	if err != nil && errors.Is(err, repo.ErrNotFound) {
		return nil, ErrItemNotFound
	} else if err != nil {
		return nil, err
	}

	acc, err := c.repo.Buy(ctx, nickname, *item)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrAlreadyOwned):
			return nil, ErrAlreadyOwned
		case errors.Is(err, repo.ErrInsufficientFunds):
			return nil, ErrInsufficientFunds
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &dto.BuyResult{Account: acc, Bought: item}, nil
}

func (c *Controller) Sell(ctx context.Context, nickname string, itemID int) (*dto.SellResult, error) {
	const op = "shop.Sell.ctrl"
	span, _ := opentracing.StartSpanFromContext(ctx, op)
	ctx = opentracing.ContextWithSpan(ctx, span)
	defer span.Finish()

	if nickname == "" {
		return nil, ErrNotLoggedIn
	}

	item, err := c.items.Get(itemID)
	if err != nil && errors.Is(err, repo.ErrNotFound) {
		return nil, ErrItemNotFound
	} else if err != nil {
		return nil, err
	}

	salePrice := item.Price / 2
	acc, err := c.repo.Sell(ctx, nickname, *item, salePrice)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotOwned):
			return nil, ErrNotOwned
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &dto.SellResult{Account: acc, Sold: item, Received: salePrice}, nil
}
