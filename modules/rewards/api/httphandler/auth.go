package httphandler

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gaze-network/epoch-rewards/common/errs"
	"github.com/gaze-network/epoch-rewards/pkg/ethsig"
)

// MaxSignatureValidity bounds how far in the future a request deadline may be.
const MaxSignatureValidity = 15 * time.Minute

const messagePrefix = "epoch-rewards:"

// signedRequest authenticates the caller of a mutating request.
// The caller signs Message(action, caller, deadline, fields...) with EIP-191.
type signedRequest struct {
	Caller    common.Address `json:"caller"`
	Deadline  int64          `json:"deadline"` // unix seconds
	Signature hexutil.Bytes  `json:"signature"`
}

func (r signedRequest) validate() []error {
	var errList []error
	if r.Caller == (common.Address{}) {
		errList = append(errList, errors.New("'caller' is required"))
	}
	if r.Deadline <= 0 {
		errList = append(errList, errors.New("'deadline' is required"))
	}
	if len(r.Signature) != ethsig.SignatureLength {
		errList = append(errList, errors.Errorf("'signature' must be %d bytes", ethsig.SignatureLength))
	}
	return errList
}

// Message is the text signed for action. Each field is a "key:value" line, amounts in their shortest decimal form.
func Message(action string, caller common.Address, deadline int64, fields ...string) []byte {
	lines := make([]string, 0, len(fields)+3)
	lines = append(lines,
		messagePrefix+action,
		"caller:"+strings.ToLower(caller.Hex()),
		"deadline:"+strconv.FormatInt(deadline, 10),
	)
	lines = append(lines, fields...)
	return []byte(strings.Join(lines, "\n"))
}

// authenticate checks the deadline window and that Caller signed the message for action.
func (h *HttpHandler) authenticate(r signedRequest, action string, fields ...string) (common.Address, error) {
	now := h.clock.Now()
	deadline := time.Unix(r.Deadline, 0)
	if now.After(deadline) {
		return common.Address{}, errs.NewPublicErrorf(errs.Unauthorized, "signature expired at %s", deadline.UTC().Format(time.RFC3339))
	}
	if deadline.Sub(now) > MaxSignatureValidity {
		return common.Address{}, errs.NewPublicErrorf(errs.Unauthorized, "deadline must be within %s", MaxSignatureValidity)
	}
	if err := ethsig.Verify(r.Caller, Message(action, r.Caller, r.Deadline, fields...), r.Signature); err != nil {
		return common.Address{}, errs.NewPublicErrorf(errs.Unauthorized, "invalid signature")
	}
	return r.Caller, nil
}
