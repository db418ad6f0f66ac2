package tcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sta4888/TZL/internal/ctrl"
	"github.com/sta4888/TZL/internal/dto"
	"github.com/sta4888/TZL/internal/hdl/validation"
	metrics "github.com/sta4888/TZL/internal/observability/metrics/prometheus"
	"go.uber.org/zap"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

const (
	actionLogin  = "login"
	actionLogout = "logout"
	actionWhoAmI = "whoami"
	actionBuy    = "buy"
	actionSell   = "sell"
)

const (
	codeNoNickname       = "no_nickname"
	codeNotLoggedIn      = "not_logged_in"
	codeNoItemID         = "no_item_id"
	codeItemNotFound     = "item_not_found"
	codeAlreadyOwned     = "already_owned"
	codeNotEnoughCredits = "not_enough_credits"
	codeNotOwned         = "not_owned"
	codeUnknownAction    = "unknown_action"
	codeInternal         = "internal_error"
)

// session is the per-connection protocol state. The nickname is the
// whole authenticated state; it lives and dies with the connection.
type session struct {
	conn     net.Conn
	enc      *json.Encoder
	nickname string
	cid      string
}

func (s *session) write(v any) {
	if err := s.enc.Encode(v); err != nil {
		zap.L().Debug(
			"failed to write response",
			zap.String("cid", s.cid), zap.Error(err),
		)
	}
}

func (s *session) writeError(code string) {
	s.write(&dto.ErrorResponse{Status: statusError, Error: code})
}

// handleConn runs the request/response loop for one connection. One
// request is processed to completion before the next line is read.
// A line that fails to parse is a protocol error and ends the loop.
func (h *Handler) handleConn(conn net.Conn) {
	s := &session{
		conn: conn,
		enc:  json.NewEncoder(conn),
		cid:  uuid.NewString(),
	}

	zap.L().Info(
		"client connected",
		zap.String("cid", s.cid), zap.String("addr", conn.RemoteAddr().String()),
	)

	defer func() {
		if err := conn.Close(); err != nil {
			zap.L().Debug("failed to close connection", zap.String("cid", s.cid), zap.Error(err))
		}
		zap.L().Info("connection closed", zap.String("cid", s.cid))
	}()

	ctx := context.Background()
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		req := &dto.Request{}
		if err := json.Unmarshal(sc.Bytes(), req); err != nil {
			zap.L().Debug(
				"failed to decode request, closing connection",
				zap.String("cid", s.cid), zap.Error(err),
			)
			return
		}

		if terminal := h.dispatch(ctx, s, req); terminal {
			return
		}
	}

	if err := sc.Err(); err != nil {
		zap.L().Debug("read error", zap.String("cid", s.cid), zap.Error(err))
	}
}

// dispatch routes one request. The returned flag is true for logout,
// which is terminal for the connection.
func (h *Handler) dispatch(ctx context.Context, s *session, req *dto.Request) bool {
	switch req.Action {
	case actionLogin:
		h.login(ctx, s, req)
	case actionLogout:
		h.logout(s)
		return true
	case actionWhoAmI:
		h.whoami(ctx, s)
	case actionBuy:
		h.buy(ctx, s, req)
	case actionSell:
		h.sell(ctx, s, req)
	default:
		s.writeError(codeUnknownAction)
	}
	return false
}

func (h *Handler) login(ctx context.Context, s *session, req *dto.Request) {
	st, start := statusOK, time.Now()
	const op = "shop.login.hdl"
	defer func() {
		metrics.ObserveRequest(time.Since(start), st, op)
	}()

	if err := validation.LoginReq(req); err != nil {
		st = statusError
		zap.L().Debug(
			"failed to validate login request",
			zap.String("op", op), zap.String("cid", s.cid), zap.Error(err),
		)
		s.writeError(codeNoNickname)
		return
	}

	res, err := h.ctrl.Login(ctx, req.Nickname)
	if err != nil && errors.Is(err, ctrl.ErrNoNickname) {
		st = statusError
		s.writeError(codeNoNickname)
		return
	} else if err != nil {
		st = statusError
		zap.L().Debug(
			"internal error",
			zap.String("op", op), zap.String("cid", s.cid), zap.Error(err),
		)
		s.writeError(codeInternal)
		return
	}

	s.nickname = req.Nickname
	s.write(&dto.LoginResponse{
		Status:      statusOK,
		Action:      "login_result",
		Account:     res.Account,
		ItemsMaster: res.ItemsMaster,
		LoginBonus:  res.LoginBonus,
	})
}

func (h *Handler) logout(s *session) {
	st, start := statusOK, time.Now()
	const op = "shop.logout.hdl"
	defer func() {
		metrics.ObserveRequest(time.Since(start), st, op)
	}()

	s.nickname = ""
	s.write(&dto.LogoutResponse{Status: statusOK, Action: "logout"})
}

func (h *Handler) whoami(ctx context.Context, s *session) {
	st, start := statusOK, time.Now()
	const op = "shop.whoami.hdl"
	defer func() {
		metrics.ObserveRequest(time.Since(start), st, op)
	}()

	acc, err := h.ctrl.WhoAmI(ctx, s.nickname)
	if err != nil && (errors.Is(err, ctrl.ErrNotLoggedIn) || errors.Is(err, ctrl.ErrNotFound)) {
		st = statusError
		s.writeError(codeNotLoggedIn)
		return
	} else if err != nil {
		st = statusError
		zap.L().Debug(
			"internal error",
			zap.String("op", op), zap.String("cid", s.cid), zap.Error(err),
		)
		s.writeError(codeInternal)
		return
	}

	s.write(&dto.WhoAmIResponse{Status: statusOK, Account: acc})
}

func (h *Handler) buy(ctx context.Context, s *session, req *dto.Request) {
	st, start := statusOK, time.Now()
	const op = "shop.buy.hdl"
	defer func() {
		metrics.ObserveRequest(time.Since(start), st, op)
	}()

	if s.nickname == "" {
		st = statusError
		s.writeError(codeNotLoggedIn)
		return
	}

	if err := validation.ItemReq(req); err != nil {
		st = statusError
		zap.L().Debug(
			"failed to validate buy request",
			zap.String("op", op), zap.String("cid", s.cid), zap.Error(err),
		)
		s.writeError(codeNoItemID)
		return
	}

	res, err := h.ctrl.Buy(ctx, s.nickname, *req.ItemID)
	if err != nil {
		st = statusError
		s.writeError(buyErrCode(op, s.cid, err))
		return
	}

	s.write(&dto.BuyResponse{
		Status:  statusOK,
		Action:  "buy_result",
		Account: res.Account,
		Bought:  res.Bought,
	})
}

func (h *Handler) sell(ctx context.Context, s *session, req *dto.Request) {
	st, start := statusOK, time.Now()
	const op = "shop.sell.hdl"
	defer func() {
		metrics.ObserveRequest(time.Since(start), st, op)
	}()

	if s.nickname == "" {
		st = statusError
		s.writeError(codeNotLoggedIn)
		return
	}

	if err := validation.ItemReq(req); err != nil {
		st = statusError
		zap.L().Debug(
			"failed to validate sell request",
			zap.String("op", op), zap.String("cid", s.cid), zap.Error(err),
		)
		s.writeError(codeNoItemID)
		return
	}

	res, err := h.ctrl.Sell(ctx, s.nickname, *req.ItemID)
	if err != nil {
		st = statusError
		s.writeError(sellErrCode(op, s.cid, err))
		return
	}

	s.write(&dto.SellResponse{
		Status:   statusOK,
		Action:   "sell_result",
		Account:  res.Account,
		Sold:     res.Sold,
		Received: res.Received,
	})
}

func buyErrCode(op, cid string, err error) string {
	switch {
	case errors.Is(err, ctrl.ErrNotLoggedIn):
		return codeNotLoggedIn
	case errors.Is(err, ctrl.ErrItemNotFound):
		return codeItemNotFound
	case errors.Is(err, ctrl.ErrAlreadyOwned):
		return codeAlreadyOwned
	case errors.Is(err, ctrl.ErrInsufficientFunds):
		return codeNotEnoughCredits
	}
	zap.L().Debug(
		"internal error",
		zap.String("op", op), zap.String("cid", cid), zap.Error(err),
	)
	return codeInternal
}

func sellErrCode(op, cid string, err error) string {
	switch {
	case errors.Is(err, ctrl.ErrNotLoggedIn):
		return codeNotLoggedIn
	case errors.Is(err, ctrl.ErrItemNotFound):
		return codeItemNotFound
	case errors.Is(err, ctrl.ErrNotOwned):
		return codeNotOwned
	}
	zap.L().Debug(
		"internal error",
		zap.String("op", op), zap.String("cid", cid), zap.Error(err),
	)
	return codeInternal
}
