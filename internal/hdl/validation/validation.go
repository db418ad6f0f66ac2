package validation

import (
	"github.com/sta4888/TZL/internal/dto"
)

func LoginReq(req *dto.Request) error {
	if req.Nickname == "" {
		return NicknameIsRequired
	}

	return nil
}

func ItemReq(req *dto.Request) error {
	if req.ItemID == nil {
		return ItemIDIsRequired
	}

	return nil
}
