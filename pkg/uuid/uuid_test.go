// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package uuid_test

import (
	"fmt"
	"testing"

	"github.com/absmach/rtlexporter/pkg/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	provider := uuid.New()

	first, err := provider.ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	second, err := provider.ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}

func TestMockID(t *testing.T) {
	provider := uuid.NewMock()

	id, err := provider.ID()
	require.Nil(t, err, fmt.Sprintf("unexpected error: %s", err))
	assert.Equal(t, fmt.Sprintf("%s%012d", uuid.Prefix, 1), id)
}
