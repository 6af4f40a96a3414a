// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/driftline/driftline/pkg/errutil"
)

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("SOME_CODE").Errorf("boom")
	errutil.AssertErrorCode(t, err, "SOME_CODE")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.Code("SOME_CODE").With("table", "users").Errorf("boom")
	errutil.AssertErrorContext(t, err, "table", "users")
}
