package session

import "github.com/gatherhall/gatherhall-go/pkg/cryptox"

func cryptoxSealer() *cryptox.Sealer {
	return cryptox.NewSealerFromKey([]byte("test-key"))
}
