package speech

import (
	"fmt"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

func errUnreachable(op string, err error) error {
	return apperr.E(apperr.KindSynthUnreachable, op,
		fmt.Errorf("synthesis engine not accessible: %w", err))
}

func errTimeout(op string, err error) error {
	return apperr.E(apperr.KindSynthTimeout, op,
		fmt.Errorf("synthesis engine timed out: %w", err))
}

func errCorrupt(op string, err error) error {
	return apperr.E(apperr.KindSynthCorrupt, op, err)
}
