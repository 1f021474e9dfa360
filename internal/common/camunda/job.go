// internal/common/camunda/job.go
package camunda

import (
	"context"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/validation"
)

// JobVariables decodes the job payload and checks it against schema.
// Both failures are INVALID_INPUT.
func JobVariables(job entities.Job, schema map[string]interface{}) (map[string]interface{}, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("job variables are not a JSON object: %v", err))
	}
	if variables == nil {
		variables = map[string]interface{}{}
	}

	if err := validation.ValidateInput(variables, schema).Err(); err != nil {
		return nil, err
	}
	return variables, nil
}

// CompleteJob completes job with output serialised as process variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("build complete command for job %d: %w", job.GetKey(), err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("complete job %d: %w", job.GetKey(), err)
	}
	return nil
}
