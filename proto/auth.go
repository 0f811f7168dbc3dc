package proto

func init() {
	register(KindLogon, decodeLogon)
	register(KindAltLogonReply, decodeAltLogonReply)
	register(KindSuperUser, decodeSuperUser)
	register(KindKillUser, decodeKillUser)
}

// Machine types packed into the low 4 bits of AuxRegistrationRec's
// aux-flags field (spec.md §6.2).
const (
	MachineUnknown = int32(0)
	MachineMac68k  = int32(1)
	MachineMacPPC  = int32(2)
	MachineWin16   = int32(3)
	MachineWin32   = int32(4)
	MachineJava    = int32(5)
)

// auxFlagsAuthenticatedBit is the high bit of aux-flags marking an
// authenticated (non-guest) logon.
const auxFlagsAuthenticatedBit = int32(1) << 31

// AuxRegistrationRec is the 128-byte logon payload (spec.md §6.2).
type AuxRegistrationRec struct {
	RegCRC             uint32
	Counter            uint32
	Username           string // Str31
	WizardPassword     string // Str31
	AuxFlags           int32
	PuidCounter        uint32
	PuidCRC            uint32
	DemoElapsedSeconds uint32
	TotalElapsedSeconds uint32
	DemoLimit          uint32
	DesiredRoom        int16
	ClientSignature    [6]byte
	RequestedProtocolVersion uint32
	UploadCaps         uint32
	DownloadCaps       uint32
	Engine2DCaps       uint32
	Graphics2DCaps     uint32
	Engine3DCaps       uint32
}

// MachineType extracts the low-4-bit machine type from AuxFlags.
func (a AuxRegistrationRec) MachineType() int32 { return a.AuxFlags & 0xF }

// Authenticated reports whether the logon claims a registered (not
// guest) identity.
func (a AuxRegistrationRec) Authenticated() bool {
	return a.AuxFlags&auxFlagsAuthenticatedBit != 0
}

func (a AuxRegistrationRec) encode(w *Writer) {
	w.U32(a.RegCRC)
	w.U32(a.Counter)
	_ = w.Str31(a.Username)
	_ = w.Str31(a.WizardPassword)
	w.I32(a.AuxFlags)
	w.U32(a.PuidCounter)
	w.U32(a.PuidCRC)
	w.U32(a.DemoElapsedSeconds)
	w.U32(a.TotalElapsedSeconds)
	w.U32(a.DemoLimit)
	w.I16(a.DesiredRoom)
	w.Raw(a.ClientSignature[:])
	w.U32(a.RequestedProtocolVersion)
	w.U32(a.UploadCaps)
	w.U32(a.DownloadCaps)
	w.U32(a.Engine2DCaps)
	w.U32(a.Graphics2DCaps)
	w.U32(a.Engine3DCaps)
}

func decodeAuxRegistrationRec(r *Reader) (AuxRegistrationRec, error) {
	var a AuxRegistrationRec
	var err error
	if a.RegCRC, err = r.U32(); err != nil {
		return a, err
	}
	if a.Counter, err = r.U32(); err != nil {
		return a, err
	}
	if a.Username, err = r.Str31(); err != nil {
		return a, err
	}
	if a.WizardPassword, err = r.Str31(); err != nil {
		return a, err
	}
	if a.AuxFlags, err = r.I32(); err != nil {
		return a, err
	}
	if a.PuidCounter, err = r.U32(); err != nil {
		return a, err
	}
	if a.PuidCRC, err = r.U32(); err != nil {
		return a, err
	}
	if a.DemoElapsedSeconds, err = r.U32(); err != nil {
		return a, err
	}
	if a.TotalElapsedSeconds, err = r.U32(); err != nil {
		return a, err
	}
	if a.DemoLimit, err = r.U32(); err != nil {
		return a, err
	}
	if a.DesiredRoom, err = r.I16(); err != nil {
		return a, err
	}
	sig, err := r.Bytes(6)
	if err != nil {
		return a, err
	}
	copy(a.ClientSignature[:], sig)
	if a.RequestedProtocolVersion, err = r.U32(); err != nil {
		return a, err
	}
	if a.UploadCaps, err = r.U32(); err != nil {
		return a, err
	}
	if a.DownloadCaps, err = r.U32(); err != nil {
		return a, err
	}
	if a.Engine2DCaps, err = r.U32(); err != nil {
		return a, err
	}
	if a.Graphics2DCaps, err = r.U32(); err != nil {
		return a, err
	}
	if a.Engine3DCaps, err = r.U32(); err != nil {
		return a, err
	}
	return a, nil
}

// Logon is the client's initial registration request.
type Logon struct {
	Rec AuxRegistrationRec
}

func (Logon) Kind() Kind          { return KindLogon }
func (m Logon) Encode(w *Writer) { m.Rec.encode(w) }

func decodeLogon(r *Reader) (Payload, error) {
	rec, err := decodeAuxRegistrationRec(r)
	if err != nil {
		return nil, err
	}
	return Logon{Rec: rec}, nil
}

// AltLogonReply carries the same record shape back for the
// alternate-signature logon flow some clients use.
type AltLogonReply struct {
	Rec AuxRegistrationRec
}

func (AltLogonReply) Kind() Kind  { return KindAltLogonReply }
func (m AltLogonReply) Encode(w *Writer) { m.Rec.encode(w) }

func decodeAltLogonReply(r *Reader) (Payload, error) {
	rec, err := decodeAuxRegistrationRec(r)
	if err != nil {
		return nil, err
	}
	return AltLogonReply{Rec: rec}, nil
}

// SuperUser is a wizard/god authentication attempt carrying a
// password.
type SuperUser struct {
	Password string // PString
}

func (SuperUser) Kind() Kind          { return KindSuperUser }
func (m SuperUser) Encode(w *Writer) { _ = w.PString(m.Password) }

func decodeSuperUser(r *Reader) (Payload, error) {
	s, err := r.PString()
	if err != nil {
		return nil, err
	}
	return SuperUser{Password: s}, nil
}

// KillUser asks the server to disconnect a target user.
type KillUser struct {
	TargetUserID int32
}

func (KillUser) Kind() Kind          { return KindKillUser }
func (m KillUser) Encode(w *Writer) { w.I32(m.TargetUserID) }

func decodeKillUser(r *Reader) (Payload, error) {
	id, err := r.I32()
	if err != nil {
		return nil, err
	}
	return KillUser{TargetUserID: id}, nil
}
