// Package password hashea y verifica contraseñas con bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost factor de trabajo por defecto (10 rondas).
const DefaultCost = 10

// maxBytes bcrypt solo usa los primeros 72 bytes; el resto se descarta en Hash y Verify.
const maxBytes = 72

// ErrMalformedHash el hash almacenado no es un bcrypt válido.
var ErrMalformedHash = errors.New("password: hash almacenado inválido")

// Hasher transforma contraseñas en hashes bcrypt con sal aleatoria por llamada.
type Hasher struct {
	cost int
}

// NewHasher construye un Hasher con el costo indicado; fuera de rango usa DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost devuelve el factor de trabajo configurado.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash devuelve el hash bcrypt de plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: generar hash: %w", err)
	}
	return string(hash), nil
}

// Verify compara plaintext con hash en tiempo constante.
// Una discrepancia devuelve (false, nil); solo un hash malformado devuelve error.
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncate(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > maxBytes {
		b = b[:maxBytes]
	}
	return b
}
