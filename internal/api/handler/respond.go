package handler

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"coaster_catalog/internal/common"
)

// respondError maps a service error to its HTTP status. Internal failures
// are logged with detail but reported generically.
func respondError(w http.ResponseWriter, log *logrus.Entry, err error) {
	status := common.HTTPStatusFromError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		common.RespondWithError(w, status, "Something went wrong, please try again later")
		return
	}
	common.RespondWithError(w, status, err.Error())
}
