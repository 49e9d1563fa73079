package testutil

import (
	"github.com/udisondev/textrsa/internal/crypto"
)

// KeyFixture — известный набор параметров и ожидаемая пара ключей.
type KeyFixture struct {
	P, Q, E int64
	Want    crypto.KeyPair
}

// Fixtures содержит предварительно вычисленные тестовые данные
// для избежания дублирования в тестах.
var Fixtures = struct {
	// Ключ из учебного примера: n = 33, φ(n) = 20
	SmallKey KeyFixture
	// Ключ демонстрации: n = 4087, φ(n) = 3960
	DemoKey KeyFixture

	// Blowfish ключ для запечатывания закрытой экспоненты
	SealKey []byte

	// Сообщение демонстрации
	Message string
}{
	SmallKey: KeyFixture{P: 3, Q: 11, E: 7, Want: crypto.KeyPair{N: 33, E: 7, D: 3}},
	DemoKey:  KeyFixture{P: 61, Q: 67, E: 17, Want: crypto.KeyPair{N: 4087, E: 17, D: 233}},
	SealKey:  []byte("textrsa-test-seal-key"),
	Message:  "MEET AT NINE",
}
