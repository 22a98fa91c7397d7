package public

import (
	"errors"

	"github.com/dropforge/internal/http/response"
	"github.com/dropforge/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError binds a business error to its response code and message.
type mappedHandlerError struct {
	target  error
	code    int
	message string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.message, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var claimErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidInput, code: response.CodeBadRequest, message: "invalid claim request"},
	{target: service.ErrCollectibleNotFound, code: response.CodeNotFound, message: "collectible not found"},
	{target: service.ErrWindowNotOpen, code: response.CodeBadRequest, message: "claim window not open yet"},
	{target: service.ErrWindowEnded, code: response.CodeGone, message: "claim window ended"},
	{target: service.ErrAlreadyClaimed, code: response.CodeConflict, message: "already claimed"},
	{target: service.ErrSoldOut, code: response.CodeGone, message: "sold out"},
	{target: service.ErrEmailSendFailed, code: response.CodeInternal, message: "claim email could not be sent"},
	{target: service.ErrPaymentDisabled, code: response.CodeInternal, message: "payment unavailable"},
	{target: service.ErrPaymentFailed, code: response.CodeInternal, message: "payment unavailable"},
	{target: service.ErrMintFailed, code: response.CodeInternal, message: "mint failed"},
}

var claimVisitErrorRules = []mappedHandlerError{
	{target: service.ErrSignatureInvalid, code: response.CodeNotFound, message: "claim link invalid or already used"},
	{target: service.ErrSignatureUsed, code: response.CodeGone, message: "claim link already used"},
	{target: service.ErrWindowNotOpen, code: response.CodeBadRequest, message: "claim window not open yet"},
	{target: service.ErrWindowEnded, code: response.CodeGone, message: "claim window ended"},
	{target: service.ErrSoldOut, code: response.CodeGone, message: "sold out"},
}

func respondClaimError(c *gin.Context, err error) {
	respondWithMappedError(c, err, claimErrorRules, response.CodeInternal, "claim failed")
}

func respondClaimVisitError(c *gin.Context, err error) {
	respondWithMappedError(c, err, claimVisitErrorRules, response.CodeInternal, "claim visit failed")
}
