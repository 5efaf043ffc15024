package swapvec

import "encoding/json"

// Serializer converts whole batches of elements to and from the opaque
// byte blocks handed to the batch codec. The element encoding is a
// collaborator contract: the container never inspects the bytes, it
// only requires that UnmarshalBatch reverses MarshalBatch exactly.
type Serializer[T any] interface {
	MarshalBatch(batch []T) ([]byte, error)
	UnmarshalBatch(data []byte) ([]T, error)
}

// JSONSerializer is the default batch serializer. Any element type
// accepted by encoding/json works with it.
type JSONSerializer[T any] struct{}

func (JSONSerializer[T]) MarshalBatch(batch []T) ([]byte, error) {
	return json.Marshal(batch)
}

func (JSONSerializer[T]) UnmarshalBatch(data []byte) ([]T, error) {
	var batch []T
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}
