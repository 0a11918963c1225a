package command

import "github.com/ytuqete/cryptoPulse/internal/application/common"

type RegisterUserCommand struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterUserCommandResult struct {
	Result *common.UserResult `json:"result"`
}
