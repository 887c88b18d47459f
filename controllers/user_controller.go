package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mukhammadalimk/natours/pkg/resp"
	"github.com/mukhammadalimk/natours/repository"
	"github.com/mukhammadalimk/natours/services"
	"github.com/mukhammadalimk/natours/utils"
)

type UserController struct {
	Service *services.UserService
	Images  *services.ImageService
}

func NewUserController(service *services.UserService, images *services.ImageService) *UserController {
	return &UserController{Service: service, Images: images}
}

// GET /users/me
func (uc *UserController) GetMe(c *gin.Context) {
	user, err := uc.Service.Get(utils.CurrentUserID(c))
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, user)
}

// PATCH /users/updateMe (JSON, or multipart with a photo)
func (uc *UserController) UpdateMe(c *gin.Context) {
	userID := utils.CurrentUserID(c)
	var req services.UpdateUserReq

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			resp.Fail(c, utils.Wrap(err, "Invalid input data. "+err.Error(), http.StatusBadRequest))
			return
		}
		if v := form.Value["name"]; len(v) > 0 {
			req.Name = &v[0]
		}
		if v := form.Value["email"]; len(v) > 0 {
			req.Email = &v[0]
		}
		if len(form.Value["password"]) > 0 || len(form.Value["passwordConfirm"]) > 0 {
			resp.Fail(c, services.ErrNotForPasswords)
			return
		}
		if fh := firstFile(form, "photo"); fh != nil {
			name, err := uc.Images.SaveUserPhoto(userID, fh)
			if err != nil {
				resp.Fail(c, err)
				return
			}
			req.Photo = name
		}
	} else if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}

	user, err := uc.Service.UpdateMe(userID, &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.OK(c, gin.H{"user": user})
}

// DELETE /users/deleteMe
func (uc *UserController) DeleteMe(c *gin.Context) {
	if err := uc.Service.DeleteMe(utils.CurrentUserID(c)); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.NoContent(c)
}

// ===== admin =====

// GET /users
func (uc *UserController) List(c *gin.Context) {
	f := utils.ParseQuery(c.Request.URL.Query(), repository.UserFields)
	users, err := uc.Service.List(f)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	out, err := f.Project(users)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.List(c, out, len(users))
}

// POST /users
func (uc *UserController) Create(c *gin.Context) {
	resp.Fail(c, services.ErrUseSignup)
}

// GET /users/:id
func (uc *UserController) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	user, err := uc.Service.Get(id)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, user)
}

// PATCH /users/:id
func (uc *UserController) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	var req services.UpdateUserReq
	if err := bindJSON(c, &req); err != nil {
		resp.Fail(c, err)
		return
	}
	user, err := uc.Service.Update(id, &req)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	resp.Doc(c, user)
}

// DELETE /users/:id
func (uc *UserController) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		resp.Fail(c, err)
		return
	}
	if err := uc.Service.Delete(id); err != nil {
		resp.Fail(c, err)
		return
	}
	resp.NoContent(c)
}
