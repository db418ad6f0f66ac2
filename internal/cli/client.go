package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	"github.com/sta4888/TZL/internal/dto"
)

// WireError is a structured error response from the server.
type WireError struct {
	Code string
}

func (e *WireError) Error() string {
	return e.Code
}

// Client speaks the line-delimited JSON protocol. It is not safe for
// concurrent use; the protocol itself is strictly request/response.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	sc   *bufio.Scanner
}

func Connect(host string, port int) (*Client, error) {
	conn, err := net.Dial("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, err
	}

	return &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		sc:   bufio.NewScanner(conn),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) do(req *dto.Request, dest any) error {
	if err := c.enc.Encode(req); err != nil {
		return err
	}

	if !c.sc.Scan() {
		if err := c.sc.Err(); err != nil {
			return err
		}
		return fmt.Errorf("connection closed by server")
	}

	probe := &dto.ErrorResponse{}
	if err := json.Unmarshal(c.sc.Bytes(), probe); err != nil {
		return err
	}
	if probe.Status == "error" {
		return &WireError{Code: probe.Error}
	}

	return json.Unmarshal(c.sc.Bytes(), dest)
}

func (c *Client) Login(nickname string) (*dto.LoginResponse, error) {
	res := &dto.LoginResponse{}
	if err := c.do(&dto.Request{Action: "login", Nickname: nickname}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Logout() error {
	return c.do(&dto.Request{Action: "logout"}, &dto.LogoutResponse{})
}

func (c *Client) WhoAmI() (*dto.WhoAmIResponse, error) {
	res := &dto.WhoAmIResponse{}
	if err := c.do(&dto.Request{Action: "whoami"}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Buy(itemID int) (*dto.BuyResponse, error) {
	res := &dto.BuyResponse{}
	if err := c.do(&dto.Request{Action: "buy", ItemID: &itemID}, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Sell(itemID int) (*dto.SellResponse, error) {
	res := &dto.SellResponse{}
	if err := c.do(&dto.Request{Action: "sell", ItemID: &itemID}, res); err != nil {
		return nil, err
	}
	return res, nil
}
