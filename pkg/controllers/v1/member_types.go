package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/ledger"
	"github.com/mess-ledger/backend/pkg/models"
)

type MemberLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/members/5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4"`            // The member itself
	Balance string `json:"balance" example:"https://example.com/api/v1/members/5f7cb04b-1fbd-4a65-a3bd-5e0d5e1dd6a4/balance"` // Balance of the member for the current month
}

// Member is the API v1 representation of a member.
type Member struct {
	models.Member
	Links MemberLinks `json:"links"`
}

func newMember(c *gin.Context, model models.Member) Member {
	url := httputil.URL(c)

	return Member{
		Member: model,
		Links: MemberLinks{
			Self:    fmt.Sprintf("%s/v1/members/%s", url, model.ID),
			Balance: fmt.Sprintf("%s/v1/members/%s/balance", url, model.ID),
		},
	}
}

type MemberResponse struct {
	Data Member `json:"data"` // Data for the member
}

type MemberListResponse struct {
	Data []Member `json:"data"` // List of members
}

type MemberBalanceResponse struct {
	Data ledger.UserSummary `json:"data"` // Balance of the member for the month
}
