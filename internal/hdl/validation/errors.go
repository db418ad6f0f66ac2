package validation

import "errors"

var NicknameIsRequired = errors.New("nickname is required")
var ItemIDIsRequired = errors.New("item_id is required")
