package handler

import (
	"net/http"

	"github.com/internhill/jobboard/internal/job"
	"github.com/internhill/jobboard/internal/server"

	"github.com/gorilla/mux"
)

func ListJobsHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobSvc.ListAll(r.Context())
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

func GetJobHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := jobSvc.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, j)
	}
}

func MyJobsHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := jobSvc.ListMine(r.Context(), identity(r))
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, jobs)
	}
}

func CreateJobHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq job.JobRq
		if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		j, err := jobSvc.Create(r.Context(), identity(r), rq)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusCreated, j)
	}
}

func UpdateJobHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq job.JobRqUpdate
		if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		j, err := jobSvc.Update(r.Context(), identity(r), mux.Vars(r)["id"], rq)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, j)
	}
}

func DeleteJobHandler(svr server.Server, jobSvc jobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := jobSvc.Delete(r.Context(), identity(r), mux.Vars(r)["id"]); err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, map[string]string{"message": "Job deleted"})
	}
}
