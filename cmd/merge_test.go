package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rift.dev/pkg/rift/internal/domain"
	m "rift.dev/pkg/rift/internal/model"
)

func TestMergeCmd(t *testing.T) {
	mockWorkflow := swapWorkflow(t)

	cmd := newTestRootCmd()
	cmd.AddCommand(newMergeCmd())

	mockWorkflow.On("Merge", mock.Anything, mock.MatchedBy(func(args domain.MergeArgs) bool {
		return args.Reports == m.Path(".rift-reports")
	})).Return(nil)

	cmd.SetArgs([]string{"merge"})
	err := cmd.Execute()
	require.NoError(t, err)

	mockWorkflow.AssertExpectations(t)
}

func TestMergeCmd_PropagatesWorkflowError(t *testing.T) {
	mockWorkflow := swapWorkflow(t)

	cmd := newTestRootCmd()
	cmd.AddCommand(newMergeCmd())

	mockWorkflow.On("Merge", mock.Anything, mock.Anything).Return(assert.AnError)

	cmd.SetArgs([]string{"merge"})
	err := cmd.Execute()
	require.Error(t, err)
}
