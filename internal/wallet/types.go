package wallet

import "encoding/json"

// Argument and result shapes for the capability operations. The wallet
// engine behind the interface is an external dependency; these types
// only pin down the wire contract the bridge parses and serializes.

type ActionOutput struct {
	LockingScript      string   `json:"lockingScript"`
	Satoshis           uint64   `json:"satoshis"`
	OutputDescription  string   `json:"outputDescription,omitempty"`
	Basket             string   `json:"basket,omitempty"`
	CustomInstructions string   `json:"customInstructions,omitempty"`
	Tags               []string `json:"tags,omitempty"`
}

type ActionInput struct {
	Outpoint              string `json:"outpoint"`
	UnlockingScript       string `json:"unlockingScript,omitempty"`
	UnlockingScriptLength uint32 `json:"unlockingScriptLength,omitempty"`
	InputDescription      string `json:"inputDescription,omitempty"`
	SequenceNumber        uint32 `json:"sequenceNumber,omitempty"`
}

type CreateActionArgs struct {
	Description string          `json:"description"`
	InputBEEF   []byte          `json:"inputBEEF,omitempty"`
	Inputs      []ActionInput   `json:"inputs,omitempty"`
	Outputs     []ActionOutput  `json:"outputs,omitempty"`
	LockTime    uint32          `json:"lockTime,omitempty"`
	Version     uint32          `json:"version,omitempty"`
	Labels      []string        `json:"labels,omitempty"`
	Options     json.RawMessage `json:"options,omitempty"`
}

type CreateActionResult struct {
	TXID                string          `json:"txid,omitempty"`
	Tx                  []byte          `json:"tx,omitempty"`
	NoSendChange        []string        `json:"noSendChange,omitempty"`
	SendWithResults     json.RawMessage `json:"sendWithResults,omitempty"`
	SignableTransaction json.RawMessage `json:"signableTransaction,omitempty"`
}

type SignActionArgs struct {
	Spends    map[string]json.RawMessage `json:"spends"`
	Reference string                     `json:"reference"`
	Options   json.RawMessage            `json:"options,omitempty"`
}

type SignActionResult struct {
	TXID            string          `json:"txid,omitempty"`
	Tx              []byte          `json:"tx,omitempty"`
	SendWithResults json.RawMessage `json:"sendWithResults,omitempty"`
}

type AbortActionArgs struct {
	Reference string `json:"reference"`
}

type AbortActionResult struct {
	Aborted bool `json:"aborted"`
}

type ListActionsArgs struct {
	Labels                           []string `json:"labels"`
	LabelQueryMode                   string   `json:"labelQueryMode,omitempty"`
	IncludeLabels                    bool     `json:"includeLabels,omitempty"`
	IncludeInputs                    bool     `json:"includeInputs,omitempty"`
	IncludeOutputs                   bool     `json:"includeOutputs,omitempty"`
	IncludeInputSourceLockingScripts bool     `json:"includeInputSourceLockingScripts,omitempty"`
	Limit                            uint32   `json:"limit,omitempty"`
	Offset                           uint32   `json:"offset,omitempty"`
}

type ListActionsResult struct {
	TotalActions uint32            `json:"totalActions"`
	Actions      []json.RawMessage `json:"actions"`
}

type InternalizeActionArgs struct {
	Tx          []byte            `json:"tx"`
	Outputs     []json.RawMessage `json:"outputs"`
	Description string            `json:"description"`
	Labels      []string          `json:"labels,omitempty"`
}

type InternalizeActionResult struct {
	Accepted bool `json:"accepted"`
}

type ListOutputsArgs struct {
	Basket         string   `json:"basket"`
	Tags           []string `json:"tags,omitempty"`
	TagQueryMode   string   `json:"tagQueryMode,omitempty"`
	Include        string   `json:"include,omitempty"`
	IncludeTags    bool     `json:"includeTags,omitempty"`
	IncludeLabels  bool     `json:"includeLabels,omitempty"`
	Limit          uint32   `json:"limit,omitempty"`
	Offset         uint32   `json:"offset,omitempty"`
}

type ListOutputsResult struct {
	TotalOutputs uint32            `json:"totalOutputs"`
	BEEF         []byte            `json:"BEEF,omitempty"`
	Outputs      []json.RawMessage `json:"outputs"`
}

type RelinquishOutputArgs struct {
	Basket string `json:"basket"`
	Output string `json:"output"`
}

type RelinquishOutputResult struct {
	Relinquished bool `json:"relinquished"`
}

// KeyArgs carries the protocol/key addressing fields shared by the
// cryptographic operations.
type KeyArgs struct {
	ProtocolID       json.RawMessage `json:"protocolID,omitempty"`
	KeyID            string          `json:"keyID,omitempty"`
	Counterparty     string          `json:"counterparty,omitempty"`
	Privileged       bool            `json:"privileged,omitempty"`
	PrivilegedReason string          `json:"privilegedReason,omitempty"`
}

type GetPublicKeyArgs struct {
	KeyArgs
	IdentityKey bool `json:"identityKey,omitempty"`
	ForSelf     bool `json:"forSelf,omitempty"`
}

type GetPublicKeyResult struct {
	PublicKey string `json:"publicKey"`
}

type RevealCounterpartyKeyLinkageArgs struct {
	Counterparty     string `json:"counterparty"`
	Verifier         string `json:"verifier"`
	Privileged       bool   `json:"privileged,omitempty"`
	PrivilegedReason string `json:"privilegedReason,omitempty"`
}

type RevealSpecificKeyLinkageArgs struct {
	KeyArgs
	Verifier string `json:"verifier"`
}

type KeyLinkageResult struct {
	Prover                string `json:"prover"`
	Verifier              string `json:"verifier"`
	Counterparty          string `json:"counterparty"`
	RevelationTime        string `json:"revelationTime,omitempty"`
	EncryptedLinkage      []byte `json:"encryptedLinkage"`
	EncryptedLinkageProof []byte `json:"encryptedLinkageProof"`
	ProofType             byte   `json:"proofType,omitempty"`
}

type EncryptArgs struct {
	KeyArgs
	Plaintext []byte `json:"plaintext"`
}

type EncryptResult struct {
	Ciphertext []byte `json:"ciphertext"`
}

type DecryptArgs struct {
	KeyArgs
	Ciphertext []byte `json:"ciphertext"`
}

type DecryptResult struct {
	Plaintext []byte `json:"plaintext"`
}

type CreateHMACArgs struct {
	KeyArgs
	Data []byte `json:"data"`
}

type CreateHMACResult struct {
	HMAC []byte `json:"hmac"`
}

type VerifyHMACArgs struct {
	KeyArgs
	Data []byte `json:"data"`
	HMAC []byte `json:"hmac"`
}

type VerifyHMACResult struct {
	Valid bool `json:"valid"`
}

type CreateSignatureArgs struct {
	KeyArgs
	Data               []byte `json:"data,omitempty"`
	HashToDirectlySign []byte `json:"hashToDirectlySign,omitempty"`
}

type CreateSignatureResult struct {
	Signature []byte `json:"signature"`
}

type VerifySignatureArgs struct {
	KeyArgs
	Data                 []byte `json:"data,omitempty"`
	HashToDirectlyVerify []byte `json:"hashToDirectlyVerify,omitempty"`
	Signature            []byte `json:"signature"`
	ForSelf              bool   `json:"forSelf,omitempty"`
}

type VerifySignatureResult struct {
	Valid bool `json:"valid"`
}

type AcquireCertificateArgs struct {
	Type                string            `json:"type"`
	Certifier           string            `json:"certifier"`
	AcquisitionProtocol string            `json:"acquisitionProtocol"`
	Fields              map[string]string `json:"fields,omitempty"`
	SerialNumber        string            `json:"serialNumber,omitempty"`
	RevocationOutpoint  string            `json:"revocationOutpoint,omitempty"`
	Signature           string            `json:"signature,omitempty"`
	CertifierURL        string            `json:"certifierUrl,omitempty"`
	KeyringRevealer     string            `json:"keyringRevealer,omitempty"`
	KeyringForSubject   map[string]string `json:"keyringForSubject,omitempty"`
}

type Certificate struct {
	Type               string            `json:"type"`
	Subject            string            `json:"subject"`
	SerialNumber       string            `json:"serialNumber"`
	Certifier          string            `json:"certifier"`
	RevocationOutpoint string            `json:"revocationOutpoint"`
	Signature          string            `json:"signature"`
	Fields             map[string]string `json:"fields,omitempty"`
}

type ListCertificatesArgs struct {
	Certifiers []string `json:"certifiers"`
	Types      []string `json:"types"`
	Limit      uint32   `json:"limit,omitempty"`
	Offset     uint32   `json:"offset,omitempty"`
}

type ListCertificatesResult struct {
	TotalCertificates uint32        `json:"totalCertificates"`
	Certificates      []Certificate `json:"certificates"`
}

type ProveCertificateArgs struct {
	Certificate    Certificate `json:"certificate"`
	FieldsToReveal []string    `json:"fieldsToReveal"`
	Verifier       string      `json:"verifier"`
}

type ProveCertificateResult struct {
	KeyringForVerifier map[string]string `json:"keyringForVerifier"`
}

type RelinquishCertificateArgs struct {
	Type         string `json:"type"`
	SerialNumber string `json:"serialNumber"`
	Certifier    string `json:"certifier"`
}

type RelinquishCertificateResult struct {
	Relinquished bool `json:"relinquished"`
}

type DiscoverByIdentityKeyArgs struct {
	IdentityKey string `json:"identityKey"`
	Limit       uint32 `json:"limit,omitempty"`
	Offset      uint32 `json:"offset,omitempty"`
}

type DiscoverByAttributesArgs struct {
	Attributes map[string]string `json:"attributes"`
	Limit      uint32            `json:"limit,omitempty"`
	Offset     uint32            `json:"offset,omitempty"`
}

type DiscoverCertificatesResult struct {
	TotalCertificates uint32            `json:"totalCertificates"`
	Certificates      []json.RawMessage `json:"certificates"`
}

type AuthenticatedResult struct {
	Authenticated bool `json:"authenticated"`
}

type GetHeightResult struct {
	Height uint32 `json:"height"`
}

type GetHeaderArgs struct {
	Height uint32 `json:"height"`
}

type GetHeaderResult struct {
	Header string `json:"header"`
}

type GetNetworkResult struct {
	Network string `json:"network"`
}

type GetVersionResult struct {
	Version string `json:"version"`
}
