package shipping

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcore/backend/internal/domain/shipping"
)

func newTestShipmentService(providers ...*fakeProvider) (*ShipmentService, *memoryShipmentRepo) {
	repo := newMemoryShipmentRepo()
	svc := NewShipmentService(&fakeRegistry{providers: providers}, repo, nil, nil)
	return svc, repo
}

func TestShipmentService_CreateShipment_Success(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{
		Success:        true,
		TrackingNumber: "AWB123456",
		ShipmentID:     "555",
		OrderID:        "777",
		CarrierName:    "Delhivery Surface",
	}
	svc, repo := newTestShipmentService(provider)

	resp, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")

	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, "AWB123456", resp.TrackingNumber)

	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseCreated, record.Phase)
	assert.Equal(t, "AWB123456", record.TrackingNumber)
	assert.Equal(t, "777", record.VendorOrderID)
	assert.Equal(t, "555", record.VendorShipmentID)
	assert.Equal(t, "19", record.ServiceSelector)
}

func TestShipmentService_CreateShipment_VendorRejection(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{
		Success: false,
		OrderID: "777",
		Error:   "no courier serviceable for this lane",
	}
	svc, repo := newTestShipmentService(provider)

	resp, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")

	// A vendor rejection is not a transport error.
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)

	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseFailed, record.Phase)
	assert.Equal(t, "no courier serviceable for this lane", record.FailureReason)
	// The stranded vendor order id stays on the record for reconciliation.
	assert.Equal(t, "777", record.VendorOrderID)
	assert.Empty(t, record.TrackingNumber)
}

func TestShipmentService_CreateShipment_TransportError(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeDelhivery)
	provider.createErr = shipping.ErrProviderUnavailable
	svc, repo := newTestShipmentService(provider)

	resp, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeDelhivery, appTestRequest(), "S")

	assert.ErrorIs(t, err, shipping.ErrProviderUnavailable)
	assert.Nil(t, resp)

	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseFailed, record.Phase)
	assert.NotEmpty(t, record.FailureReason)
}

func TestShipmentService_CreateShipment_InvalidRequest(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	svc, repo := newTestShipmentService(provider)

	req := appTestRequest()
	req.WeightGrams = 0

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, req, "19")

	require.Error(t, err)
	assert.Nil(t, repo.byOrder("ORD-2001"))
	assert.Zero(t, provider.createCalls)
}

func TestShipmentService_CreateShipment_UnknownProvider(t *testing.T) {
	svc, _ := newTestShipmentService()

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeXpressbees, appTestRequest(), "2")

	assert.ErrorIs(t, err, shipping.ErrProviderNotConfigured)
}

func TestShipmentService_CreateShipment_InternationalUnsupported(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeDelhivery)
	svc, repo := newTestShipmentService(provider)

	req := appTestRequest()
	req.International = &shipping.InternationalDetails{DestinationCountry: "AE"}

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeDelhivery, req, "S")

	assert.ErrorIs(t, err, shipping.ErrInternationalNotSupported)
	assert.Nil(t, repo.byOrder("ORD-2001"))
}

func TestShipmentService_CreateShipment_PendingRecordSurvivesRepoFailure(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	repo := newMemoryShipmentRepo()
	repo.saveErr = errors.New("connection reset")
	svc := NewShipmentService(&fakeRegistry{providers: []*fakeProvider{provider}}, repo, nil, nil)

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")

	// No pending marker means no vendor call: the record is the audit trail.
	require.Error(t, err)
	assert.Zero(t, provider.createCalls)
}

func TestShipmentService_CreateShipment_ArchivesLabel(t *testing.T) {
	labelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 label"))
	}))
	defer labelServer.Close()

	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{
		Success:        true,
		TrackingNumber: "AWB123456",
		LabelURL:       labelServer.URL + "/label.pdf",
	}
	repo := newMemoryShipmentRepo()
	archive := newFakeLabelArchive()
	svc := NewShipmentService(&fakeRegistry{providers: []*fakeProvider{provider}}, repo, archive, nil)

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")
	require.NoError(t, err)

	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, "labels/AWB123456.pdf", record.LabelArchiveKey)
	assert.Equal(t, "%PDF-1.4 label", archive.stored["labels/AWB123456.pdf"])
}

func TestShipmentService_CreateShipment_LabelArchiveFailureIsNotFatal(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{
		Success:        true,
		TrackingNumber: "AWB123456",
		LabelURL:       "http://127.0.0.1:1/unreachable.pdf",
	}
	repo := newMemoryShipmentRepo()
	svc := NewShipmentService(&fakeRegistry{providers: []*fakeProvider{provider}}, repo, newFakeLabelArchive(), nil)

	resp, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseCreated, record.Phase)
	assert.Empty(t, record.LabelArchiveKey)
}

func TestShipmentService_TrackShipment_UpdatesRecordStatus(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{Success: true, TrackingNumber: "AWB123456"}
	provider.trackResp = &shipping.TrackingResponse{
		TrackingNumber: "AWB123456",
		Status:         shipping.StatusInTransit,
	}
	svc, repo := newTestShipmentService(provider)

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")
	require.NoError(t, err)

	track, err := svc.TrackShipment(context.Background(), shipping.ProviderCodeShiprocket, "AWB123456")

	require.NoError(t, err)
	assert.Equal(t, shipping.StatusInTransit, track.Status)
	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, shipping.StatusInTransit, record.Status)
}

func TestShipmentService_CancelShipment_MarksRecordCancelled(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{Success: true, TrackingNumber: "AWB123456"}
	provider.cancelResp = &shipping.CancellationResponse{Success: true, TrackingNumber: "AWB123456"}
	svc, repo := newTestShipmentService(provider)

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")
	require.NoError(t, err)

	resp, err := svc.CancelShipment(context.Background(), shipping.ProviderCodeShiprocket, "AWB123456")

	require.NoError(t, err)
	assert.True(t, resp.Success)
	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseCancelled, record.Phase)
	assert.Equal(t, shipping.StatusCancelled, record.Status)
}

func TestShipmentService_CancelShipment_UnknownRecordTolerated(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.cancelResp = &shipping.CancellationResponse{Success: true, TrackingNumber: "AWB999"}
	svc, _ := newTestShipmentService(provider)

	resp, err := svc.CancelShipment(context.Background(), shipping.ProviderCodeShiprocket, "AWB999")

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestShipmentService_CancelShipment_VendorRejection(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeShiprocket)
	provider.createResp = &shipping.ShipmentResponse{Success: true, TrackingNumber: "AWB123456"}
	provider.cancelResp = &shipping.CancellationResponse{
		Success: false,
		Message: "shipment already in transit",
	}
	svc, repo := newTestShipmentService(provider)

	_, err := svc.CreateShipment(context.Background(), shipping.ProviderCodeShiprocket, appTestRequest(), "19")
	require.NoError(t, err)

	resp, err := svc.CancelShipment(context.Background(), shipping.ProviderCodeShiprocket, "AWB123456")

	require.NoError(t, err)
	assert.False(t, resp.Success)
	record := repo.byOrder("ORD-2001")
	require.NotNil(t, record)
	assert.Equal(t, PhaseCreated, record.Phase)
}

func TestShipmentService_LabelURL(t *testing.T) {
	t.Run("prefers archived copy", func(t *testing.T) {
		repo := newMemoryShipmentRepo()
		archive := newFakeLabelArchive()
		require.NoError(t, archive.Store(context.Background(), "labels/AWB1.pdf", strings.NewReader("pdf"), 3, "application/pdf"))
		require.NoError(t, repo.Save(context.Background(), &ShipmentRecord{
			ID:              uuid.New(),
			TrackingNumber:  "AWB1",
			LabelURL:        "https://vendor.example.com/label.pdf",
			LabelArchiveKey: "labels/AWB1.pdf",
		}))
		svc := NewShipmentService(&fakeRegistry{}, repo, archive, nil)

		url, err := svc.LabelURL(context.Background(), "AWB1")
		require.NoError(t, err)
		assert.Equal(t, "https://archive.example.com/labels/AWB1.pdf?signed", url)
	})

	t.Run("falls back to vendor URL", func(t *testing.T) {
		repo := newMemoryShipmentRepo()
		require.NoError(t, repo.Save(context.Background(), &ShipmentRecord{
			ID:             uuid.New(),
			TrackingNumber: "AWB2",
			LabelURL:       "https://vendor.example.com/label2.pdf",
		}))
		svc := NewShipmentService(&fakeRegistry{}, repo, nil, nil)

		url, err := svc.LabelURL(context.Background(), "AWB2")
		require.NoError(t, err)
		assert.Equal(t, "https://vendor.example.com/label2.pdf", url)
	})

	t.Run("no label at all", func(t *testing.T) {
		repo := newMemoryShipmentRepo()
		require.NoError(t, repo.Save(context.Background(), &ShipmentRecord{
			ID:             uuid.New(),
			TrackingNumber: "AWB3",
		}))
		svc := NewShipmentService(&fakeRegistry{}, repo, nil, nil)

		_, err := svc.LabelURL(context.Background(), "AWB3")
		assert.ErrorIs(t, err, shipping.ErrShipmentNotFound)
	})

	t.Run("unknown tracking number", func(t *testing.T) {
		svc := NewShipmentService(&fakeRegistry{}, newMemoryShipmentRepo(), nil, nil)

		_, err := svc.LabelURL(context.Background(), "AWB404")
		assert.ErrorIs(t, err, ErrShipmentRecordNotFound)
	})
}

func TestShipmentService_CreateReturnShipment(t *testing.T) {
	provider := newFakeProvider(shipping.ProviderCodeXpressbees)
	provider.createResp = &shipping.ShipmentResponse{
		Success:        true,
		TrackingNumber: "RVP555",
	}
	svc, _ := newTestShipmentService(provider)

	resp, err := svc.CreateReturnShipment(context.Background(), shipping.ProviderCodeXpressbees, "AWB123456", appTestRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "RVP555", resp.TrackingNumber)
}
