package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/internhill/jobboard/internal/application"
	"github.com/internhill/jobboard/internal/apperr"
	"github.com/internhill/jobboard/internal/server"

	humanize "github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// multipart headers and the text fields on top of the resume itself
const formOverhead = 1 << 20

func ApplyHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxResumeSize := svr.GetConfig().MaxResumeSize
		r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize+formOverhead)
		var rq application.ApplyRq
		var resume *application.Resume
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			var err error
			rq, resume, err = readApplyForm(r, maxResumeSize)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || errors.Is(err, errResumeTooLarge) {
				svr.JSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"message": fmt.Sprintf("Resume must be smaller than %s", humanize.Bytes(uint64(maxResumeSize))),
				})
				return
			}
			if err != nil {
				svr.Error(w, apperr.Validation("Invalid form data"))
				return
			}
		} else if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		app, err := appSvc.Apply(r.Context(), identity(r), rq, resume)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusCreated, map[string]interface{}{
			"message":     "Application submitted successfully",
			"application": app,
		})
	}
}

var errResumeTooLarge = errors.New("resume too large")

func readApplyForm(r *http.Request, maxResumeSize int64) (application.ApplyRq, *application.Resume, error) {
	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		return application.ApplyRq{}, nil, err
	}
	rq := application.ApplyRq{
		JobID:       r.FormValue("jobId"),
		CoverLetter: r.FormValue("coverLetter"),
	}
	f, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return rq, nil, nil
	}
	if err != nil {
		return rq, nil, err
	}
	defer f.Close()
	if header.Size > maxResumeSize {
		return rq, nil, errResumeTooLarge
	}
	b, err := io.ReadAll(f)
	if err != nil {
		return rq, nil, err
	}
	return rq, &application.Resume{Filename: header.Filename, Bytes: b}, nil
}

func MyApplicationsHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := appSvc.ListMine(r.Context(), identity(r))
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, apps)
	}
}

func JobApplicationsHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := appSvc.ListForJob(r.Context(), identity(r), mux.Vars(r)["jobId"])
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, apps)
	}
}

func EmployerApplicationsHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := appSvc.ListForEmployer(r.Context(), identity(r))
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, apps)
	}
}

func UpdateApplicationStatusHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rq application.StatusRq
		if err := decodeJSON(r, &rq); err != nil {
			svr.Error(w, err)
			return
		}
		app, err := appSvc.UpdateStatus(r.Context(), identity(r), mux.Vars(r)["id"], rq)
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.JSON(w, http.StatusOK, app)
	}
}

func DownloadResumeHandler(svr server.Server, appSvc applicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := appSvc.DownloadResume(r.Context(), identity(r), mux.Vars(r)["filename"])
		if err != nil {
			svr.Error(w, err)
			return
		}
		svr.MEDIA(w, http.StatusOK, f.Bytes, f.ContentType, f.Name)
	}
}
