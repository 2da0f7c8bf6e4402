package template

import (
	"strconv"

	"strokesegapi/utils"
)

// TrainingVariables is the variable bundle for the training sbatch template.
// The deployed template uses the fold_index + task_number contract.
type TrainingVariables struct {
	ModelName  string `validate:"required"`
	ModelPath  string `validate:"required"`
	FoldIndex  int    `validate:"gte=0"`
	TaskNumber int    `validate:"gte=0"`
	Timestamp  string `validate:"required"`
}

// Validate checks the bundle before rendering.
func (v TrainingVariables) Validate() error {
	return utils.ValidateStruct(v)
}

// ToMap converts the bundle to the renderer's variable map.
func (v TrainingVariables) ToMap() map[string]string {
	return map[string]string{
		"model_name":  v.ModelName,
		"model_path":  v.ModelPath,
		"fold_index":  strconv.Itoa(v.FoldIndex),
		"task_number": strconv.Itoa(v.TaskNumber),
		"timestamp":   v.Timestamp,
	}
}

// PredictionVariables is the variable bundle for the inference sbatch template.
type PredictionVariables struct {
	ModelName  string `validate:"required"`
	ModelPath  string `validate:"required"`
	OutputPath string `validate:"required"`
	Timestamp  string `validate:"required"`
}

// Validate checks the bundle before rendering.
func (v PredictionVariables) Validate() error {
	return utils.ValidateStruct(v)
}

// ToMap converts the bundle to the renderer's variable map.
func (v PredictionVariables) ToMap() map[string]string {
	return map[string]string{
		"model_name":  v.ModelName,
		"model_path":  v.ModelPath,
		"output_path": v.OutputPath,
		"timestamp":   v.Timestamp,
	}
}

// EvaluationVariables is the variable bundle for the evaluation sbatch template.
type EvaluationVariables struct {
	ModelName      string   `validate:"required"`
	ModelPath      string   `validate:"required"`
	EvaluationPath string   `validate:"required"`
	Configurations []string `validate:"required,min=1,dive,oneof=2d 3d_fullres 3d_lowres 3d_cascade_lowres"`
	OutputPath     string   `validate:"required"`
	Timestamp      string   `validate:"required"`
}

// Validate checks the bundle before rendering.
func (v EvaluationVariables) Validate() error {
	return utils.ValidateStruct(v)
}

// ToMap converts the bundle to the renderer's variable map. Configurations
// are rendered space-separated, as the evaluation pipeline consumes them.
func (v EvaluationVariables) ToMap() map[string]string {
	configurations := ""
	for i, c := range v.Configurations {
		if i > 0 {
			configurations += " "
		}
		configurations += c
	}
	return map[string]string{
		"model_name":      v.ModelName,
		"model_path":      v.ModelPath,
		"evaluation_path": v.EvaluationPath,
		"configurations":  configurations,
		"output_path":     v.OutputPath,
		"timestamp":       v.Timestamp,
	}
}
