package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/securelogin/apiv1/config"
	"github.com/securelogin/apiv1/dbhelper"
	"github.com/securelogin/apiv1/notify"
	"github.com/securelogin/apiv1/routes"
	"github.com/securelogin/apiv1/utils"
)

func main() {
	// Setting up configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	// Setting up logs
	file, err := os.OpenFile("logs.txt", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatal(err)
	}
	log.SetOutput(file)
	// Setting up database
	db, err := dbhelper.OpenDB(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := dbhelper.InitDB(db); err != nil {
		log.Fatal(err)
	}
	// Wiring the components
	var notifier notify.Notifier
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)
	} else {
		notifier = notify.LogNotifier{}
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTLifetime)
	flows := dbhelper.NewAuthFlows(db, notifier, tokens)
	// Opening the webserver
	r := mux.NewRouter()
	r.StrictSlash(true)
	routes.CreateRoutes(r, flows, tokens)
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.CORSOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
	log.Println("listening on :" + cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, cors(r)); err != nil {
		log.Fatal(err)
	}
}
