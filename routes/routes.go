package routes

import (
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/securelogin/apiv1/dbhelper"
	"github.com/securelogin/apiv1/utils"
)

var validate *validator.Validate

// CreateRoutes mounts the authentication endpoints on r.
func CreateRoutes(r *mux.Router, flows *dbhelper.AuthFlows, tokens *utils.TokenIssuer) {
	validate = validator.New()
	AuthRouter(r, flows, tokens)
}
