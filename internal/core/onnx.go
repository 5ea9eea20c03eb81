package core

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initOnce sync.Once
	initErr  error
)

// initRuntime initializes the ONNX runtime environment once per process.
func initRuntime(libPath string) error {
	initOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	return initErr
}

// OnnxClassifier runs a survival classifier exported to ONNX. The model is
// expected to have a single float input of shape [N, numFeatures] and the
// two standard classifier outputs: predicted labels (int64) and class
// probabilities (float32, two classes).
type OnnxClassifier struct {
	session     *ort.DynamicAdvancedSession
	numFeatures int64
}

func LoadOnnxClassifier(modelPath, libPath string) (*OnnxClassifier, error) {
	if err := initRuntime(libPath); err != nil {
		return nil, fmt.Errorf("failed to initialize onnx runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model info: %w", err)
	}

	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected model with 1 input, got %d", len(inputs))
	}
	dims := inputs[0].Dimensions
	if len(dims) != 2 {
		return nil, fmt.Errorf("expected 2D input tensor, got shape %v", dims)
	}
	numFeatures := dims[1]

	labelOut, probOut, err := classifierOutputs(outputs)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{labelOut, probOut},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &OnnxClassifier{session: session, numFeatures: numFeatures}, nil
}

// classifierOutputs resolves the label and probability output names. Models
// exported from sklearn name them "label" and "probabilities"; otherwise the
// first two outputs are taken in order.
func classifierOutputs(outputs []ort.InputOutputInfo) (string, string, error) {
	if len(outputs) < 2 {
		return "", "", fmt.Errorf("expected model with label and probability outputs, got %d outputs", len(outputs))
	}

	label, probs := outputs[0].Name, outputs[1].Name
	for _, out := range outputs {
		switch out.Name {
		case "label":
			label = out.Name
		case "probabilities":
			probs = out.Name
		}
	}
	return label, probs, nil
}

func (m *OnnxClassifier) Predict(features []float32) (int64, []float32, error) {
	if int64(len(features)) != m.numFeatures {
		return 0, nil, fmt.Errorf("model expects %d features, got %d", m.numFeatures, len(features))
	}

	inT, err := ort.NewTensor(ort.NewShape(1, m.numFeatures), features)
	if err != nil {
		return 0, nil, err
	}
	defer inT.Destroy()

	labelT, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, err
	}
	defer labelT.Destroy()

	probT, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return 0, nil, err
	}
	defer probT.Destroy()

	if err := m.session.Run([]ort.Value{inT}, []ort.Value{labelT, probT}); err != nil {
		return 0, nil, fmt.Errorf("session run error: %w", err)
	}

	probs := make([]float32, 2)
	copy(probs, probT.GetData())

	return labelT.GetData()[0], probs, nil
}

func (m *OnnxClassifier) Release() {
	m.session.Destroy()
}
