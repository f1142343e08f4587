package http

import (
	"net/http"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/pkg/adminsdk"
)

// UsersHandler manages admin accounts and lists permissions.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/admin/users
//
//	@Summary		Create admin user
//	@Description	Creates an admin user and assigns the named roles. Requires admin:user:create.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		adminsdk.CreateUserRequest					true	"New user"
//	@Success		201		{object}	adminsdk.Result{data=adminsdk.UserResponse}	"User created"
//	@Failure		400		{object}	adminsdk.Result								"Invalid user or unknown role"
//	@Failure		401		{object}	adminsdk.Result								"Not logged in or token expired"
//	@Failure		403		{object}	adminsdk.Result								"Missing authority"
//	@Failure		409		{object}	adminsdk.Result								"Username taken"
//	@Router			/v1/admin/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
		Email:    req.Email,
		Note:     req.Note,
		Roles:    req.Roles,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	roles, err := h.UserService.RoleNames(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	adminsdk.WriteOK(w, http.StatusCreated, userResponse(user, roles))
}

// HandleList handles GET /v1/admin/users
//
//	@Summary		List admin users
//	@Description	Lists every admin user with its role names. Requires admin:user:read.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	adminsdk.Result{data=[]adminsdk.UserResponse}	"Users"
//	@Failure		401	{object}	adminsdk.Result									"Not logged in or token expired"
//	@Failure		403	{object}	adminsdk.Result									"Missing authority"
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]adminsdk.UserResponse, 0, len(users))
	for _, u := range users {
		roles, err := h.UserService.RoleNames(r.Context(), u.ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out = append(out, userResponse(u, roles))
	}
	adminsdk.WriteOK(w, http.StatusOK, out)
}

// HandleListPermissions handles GET /v1/admin/permissions
//
//	@Summary		List permissions
//	@Description	Lists every permission. Requires admin:permission:read.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	adminsdk.Result{data=[]adminsdk.PermissionResponse}	"Permissions"
//	@Failure		401	{object}	adminsdk.Result										"Not logged in or token expired"
//	@Failure		403	{object}	adminsdk.Result										"Missing authority"
//	@Router			/v1/admin/permissions [get].
func (h *UsersHandler) HandleListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.UserService.ListPermissions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]adminsdk.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, permissionResponse(p))
	}
	adminsdk.WriteOK(w, http.StatusOK, out)
}

func userResponse(u domain.User, roles []string) adminsdk.UserResponse {
	return adminsdk.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Status:    u.Status,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
	}
}

func permissionResponse(p domain.Permission) adminsdk.PermissionResponse {
	return adminsdk.PermissionResponse{
		ID:     p.ID,
		Name:   p.Name,
		Value:  p.Value,
		Type:   int(p.Type),
		URI:    p.URI,
		Status: p.Status,
	}
}
