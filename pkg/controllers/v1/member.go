package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mess-ledger/backend/pkg/httperrors"
	"github.com/mess-ledger/backend/pkg/httputil"
	"github.com/mess-ledger/backend/pkg/ledger"
)

// RegisterMemberRoutes registers the routes for members with
// the RouterGroup that is passed.
func (co Controller) RegisterMemberRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsMemberList)
		r.GET("", co.GetMembers)
		r.POST("", co.CreateMember)
	}

	// Member with ID
	{
		r.OPTIONS("/:id", co.OptionsMemberDetail)
		r.GET("/:id", co.GetMember)
		r.PATCH("/:id", co.UpdateMember)
		r.DELETE("/:id", co.DeleteMember)
		r.OPTIONS("/:id/balance", co.OptionsMemberBalance)
		r.GET("/:id/balance", co.GetMemberBalance)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Members
// @Success		204
// @Router			/v1/members [options]
func (co Controller) OptionsMemberList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Members
// @Success		204
// @Failure		400	{object}	httperrors.HTTPError
// @Failure		404	{object}	httperrors.HTTPError
// @Failure		500	{object}	httperrors.HTTPError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/members/{id} [options]
func (co Controller) OptionsMemberDetail(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	_, err := co.Ledger.Member(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Members
// @Success		204
// @Param			id	path	string	true	"ID formatted as string"
// @Router			/v1/members/{id}/balance [options]
func (co Controller) OptionsMemberBalance(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		List members
// @Description	Returns all members ordered by name
// @Tags			Members
// @Produce		json
// @Success		200		{object}	MemberListResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			active	query		bool	false	"Only active (true) or inactive (false) members"
// @Router			/v1/members [get]
func (co Controller) GetMembers(c *gin.Context) {
	var active *bool
	if value, ok := c.GetQuery("active"); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			httperrors.New(c, http.StatusBadRequest, "The active parameter must be true or false")
			return
		}
		active = &b
	}

	members, err := co.Ledger.Members(c.Request.Context(), active)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	// When there are no members, we want an empty list, not null
	data := make([]Member, 0, len(members))
	for _, member := range members {
		data = append(data, newMember(c, member))
	}

	c.JSON(http.StatusOK, MemberListResponse{Data: data})
}

// @Summary		Create member
// @Description	Creates a new member. Members are active unless "active" is false.
// @Tags			Members
// @Produce		json
// @Success		201		{object}	MemberResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			member	body		ledger.MemberInput	true	"Member"
// @Router			/v1/members [post]
func (co Controller) CreateMember(c *gin.Context) {
	var input ledger.MemberInput
	if err := httputil.BindData(c, &input); err != nil {
		httperrors.Handler(c, err)
		return
	}

	member, err := co.Ledger.CreateMember(c.Request.Context(), input)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusCreated, MemberResponse{Data: newMember(c, member)})
}

// @Summary		Get member
// @Description	Returns a specific member
// @Tags			Members
// @Produce		json
// @Success		200	{object}	MemberResponse
// @Failure		400	{object}	httperrors.HTTPError
// @Failure		404	{object}	httperrors.HTTPError
// @Failure		500	{object}	httperrors.HTTPError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/members/{id} [get]
func (co Controller) GetMember(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	member, err := co.Ledger.Member(c.Request.Context(), id)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberResponse{Data: newMember(c, member)})
}

// @Summary		Update member
// @Description	Updates a member. Only values to be updated need to be specified.
// @Tags			Members
// @Accept			json
// @Produce		json
// @Success		200		{object}	MemberResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			id		path		string				true	"ID formatted as string"
// @Param			member	body		ledger.MemberInput	true	"Member"
// @Router			/v1/members/{id} [patch]
func (co Controller) UpdateMember(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	fields, err := httputil.BodyFields(c)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	var input ledger.MemberInput
	if err := httputil.BindData(c, &input); err != nil {
		httperrors.Handler(c, err)
		return
	}

	member, err := co.Ledger.UpdateMember(c.Request.Context(), id, input, fields)
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberResponse{Data: newMember(c, member)})
}

// @Summary		Delete member
// @Description	Deletes a member and all of their records
// @Tags			Members
// @Success		204
// @Failure		400	{object}	httperrors.HTTPError
// @Failure		404	{object}	httperrors.HTTPError
// @Failure		500	{object}	httperrors.HTTPError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/members/{id} [delete]
func (co Controller) DeleteMember(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	if err := co.Ledger.DeleteMember(c.Request.Context(), id); err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary		Get member balance
// @Description	Returns the meals, costs, deposits and balance of a member for a month
// @Tags			Members
// @Produce		json
// @Success		200		{object}	MemberBalanceResponse
// @Failure		400		{object}	httperrors.HTTPError
// @Failure		404		{object}	httperrors.HTTPError
// @Failure		500		{object}	httperrors.HTTPError
// @Param			id		path		string	true	"ID formatted as string"
// @Param			month	query		string	false	"Month in YYYY-MM format. Defaults to the current month"
// @Router			/v1/members/{id}/balance [get]
func (co Controller) GetMemberBalance(c *gin.Context) {
	id, ok := uriID(c)
	if !ok {
		return
	}

	balance, err := co.Ledger.MemberBalance(c.Request.Context(), id, c.Query("month"))
	if err != nil {
		httperrors.Handler(c, err)
		return
	}

	c.JSON(http.StatusOK, MemberBalanceResponse{Data: balance})
}
