package handler

import (
	"net/http"

	"github.com/internhill/jobboard/internal/auth"
	"github.com/internhill/jobboard/internal/server"
)

type sessionRes struct {
	Success bool `json:"success"`
	auth.Session
}

func RegisterHandler(svr server.Server, authSvc authService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq auth.RegisterRq
		if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		sess, err := authSvc.Register(r.Context(), rq)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusCreated, sessionRes{Success: true, Session: sess})
	}
}

func LoginHandler(svr server.Server, authSvc authService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq auth.LoginRq
		if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		sess, err := authSvc.Login(r.Context(), rq)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, sessionRes{Success: true, Session: sess})
	}
}

func MeHandler(svr server.Server, authSvc authService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := authSvc.Me(r.Context(), identity(r))
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, u)
	}
}
