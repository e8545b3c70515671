package wallet

import (
	"context"
	"errors"
)

// Interface is the wallet capability surface the bridge dispatches to.
// It is an external, already-implemented dependency; every operation is
// asynchronous and scoped to the originator that requested it.
type Interface interface {
	CreateAction(ctx context.Context, args CreateActionArgs, originator string) (*CreateActionResult, error)
	SignAction(ctx context.Context, args SignActionArgs, originator string) (*SignActionResult, error)
	AbortAction(ctx context.Context, args AbortActionArgs, originator string) (*AbortActionResult, error)
	ListActions(ctx context.Context, args ListActionsArgs, originator string) (*ListActionsResult, error)
	InternalizeAction(ctx context.Context, args InternalizeActionArgs, originator string) (*InternalizeActionResult, error)
	ListOutputs(ctx context.Context, args ListOutputsArgs, originator string) (*ListOutputsResult, error)
	RelinquishOutput(ctx context.Context, args RelinquishOutputArgs, originator string) (*RelinquishOutputResult, error)

	GetPublicKey(ctx context.Context, args GetPublicKeyArgs, originator string) (*GetPublicKeyResult, error)
	RevealCounterpartyKeyLinkage(ctx context.Context, args RevealCounterpartyKeyLinkageArgs, originator string) (*KeyLinkageResult, error)
	RevealSpecificKeyLinkage(ctx context.Context, args RevealSpecificKeyLinkageArgs, originator string) (*KeyLinkageResult, error)
	Encrypt(ctx context.Context, args EncryptArgs, originator string) (*EncryptResult, error)
	Decrypt(ctx context.Context, args DecryptArgs, originator string) (*DecryptResult, error)
	CreateHMAC(ctx context.Context, args CreateHMACArgs, originator string) (*CreateHMACResult, error)
	VerifyHMAC(ctx context.Context, args VerifyHMACArgs, originator string) (*VerifyHMACResult, error)
	CreateSignature(ctx context.Context, args CreateSignatureArgs, originator string) (*CreateSignatureResult, error)
	VerifySignature(ctx context.Context, args VerifySignatureArgs, originator string) (*VerifySignatureResult, error)

	AcquireCertificate(ctx context.Context, args AcquireCertificateArgs, originator string) (*Certificate, error)
	ListCertificates(ctx context.Context, args ListCertificatesArgs, originator string) (*ListCertificatesResult, error)
	ProveCertificate(ctx context.Context, args ProveCertificateArgs, originator string) (*ProveCertificateResult, error)
	RelinquishCertificate(ctx context.Context, args RelinquishCertificateArgs, originator string) (*RelinquishCertificateResult, error)
	DiscoverByIdentityKey(ctx context.Context, args DiscoverByIdentityKeyArgs, originator string) (*DiscoverCertificatesResult, error)
	DiscoverByAttributes(ctx context.Context, args DiscoverByAttributesArgs, originator string) (*DiscoverCertificatesResult, error)

	IsAuthenticated(ctx context.Context, originator string) (*AuthenticatedResult, error)
	WaitForAuthentication(ctx context.Context, originator string) (*AuthenticatedResult, error)
	GetHeight(ctx context.Context, originator string) (*GetHeightResult, error)
	GetHeaderForHeight(ctx context.Context, args GetHeaderArgs, originator string) (*GetHeaderResult, error)
	GetNetwork(ctx context.Context, originator string) (*GetNetworkResult, error)
	GetVersion(ctx context.Context, originator string) (*GetVersionResult, error)
}

// ErrNotConfigured is returned by Unimplemented for every operation.
var ErrNotConfigured = errors.New("wallet engine not configured")

// Unimplemented satisfies Interface and fails every call. The desktop
// shell embeds it until a real wallet engine is attached.
type Unimplemented struct{}

var _ Interface = Unimplemented{}

func (Unimplemented) CreateAction(context.Context, CreateActionArgs, string) (*CreateActionResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) SignAction(context.Context, SignActionArgs, string) (*SignActionResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) AbortAction(context.Context, AbortActionArgs, string) (*AbortActionResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) ListActions(context.Context, ListActionsArgs, string) (*ListActionsResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) InternalizeAction(context.Context, InternalizeActionArgs, string) (*InternalizeActionResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) ListOutputs(context.Context, ListOutputsArgs, string) (*ListOutputsResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) RelinquishOutput(context.Context, RelinquishOutputArgs, string) (*RelinquishOutputResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) GetPublicKey(context.Context, GetPublicKeyArgs, string) (*GetPublicKeyResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) RevealCounterpartyKeyLinkage(context.Context, RevealCounterpartyKeyLinkageArgs, string) (*KeyLinkageResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) RevealSpecificKeyLinkage(context.Context, RevealSpecificKeyLinkageArgs, string) (*KeyLinkageResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) Encrypt(context.Context, EncryptArgs, string) (*EncryptResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) Decrypt(context.Context, DecryptArgs, string) (*DecryptResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) CreateHMAC(context.Context, CreateHMACArgs, string) (*CreateHMACResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) VerifyHMAC(context.Context, VerifyHMACArgs, string) (*VerifyHMACResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) CreateSignature(context.Context, CreateSignatureArgs, string) (*CreateSignatureResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) VerifySignature(context.Context, VerifySignatureArgs, string) (*VerifySignatureResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) AcquireCertificate(context.Context, AcquireCertificateArgs, string) (*Certificate, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) ListCertificates(context.Context, ListCertificatesArgs, string) (*ListCertificatesResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) ProveCertificate(context.Context, ProveCertificateArgs, string) (*ProveCertificateResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) RelinquishCertificate(context.Context, RelinquishCertificateArgs, string) (*RelinquishCertificateResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) DiscoverByIdentityKey(context.Context, DiscoverByIdentityKeyArgs, string) (*DiscoverCertificatesResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) DiscoverByAttributes(context.Context, DiscoverByAttributesArgs, string) (*DiscoverCertificatesResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) IsAuthenticated(context.Context, string) (*AuthenticatedResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) WaitForAuthentication(context.Context, string) (*AuthenticatedResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) GetHeight(context.Context, string) (*GetHeightResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) GetHeaderForHeight(context.Context, GetHeaderArgs, string) (*GetHeaderResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) GetNetwork(context.Context, string) (*GetNetworkResult, error) {
	return nil, ErrNotConfigured
}
func (Unimplemented) GetVersion(context.Context, string) (*GetVersionResult, error) {
	return nil, ErrNotConfigured
}
